package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/qrcode"
)

const provisioningURI = "otpauth://totp/Open%20Collective:alice%40example.com?algorithm=SHA1&digits=6&issuer=Open+Collective&period=30&secret=JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()
		for _, content := range []string{"", "   \t\n"} {
			img, err := qrcode.Generate(content)
			require.ErrorIs(t, err, qrcode.ErrEmptyContent)
			assert.Nil(t, img)
		}
	})

	t.Run("renders decodable PNG at default size", func(t *testing.T) {
		t.Parallel()
		data, err := qrcode.Generate(provisioningURI)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
		assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dy())
	})

	t.Run("honours size option", func(t *testing.T) {
		t.Parallel()
		data, err := qrcode.Generate(provisioningURI, qrcode.WithSize(400), qrcode.WithRecoveryLevel(qrcode.High))
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 400, img.Bounds().Dx())
	})

	t.Run("ignores non-positive size", func(t *testing.T) {
		t.Parallel()
		data, err := qrcode.Generate(provisioningURI, qrcode.WithSize(-1), qrcode.WithoutBorder())
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
	})

	t.Run("fails when content exceeds capacity", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.Generate(strings.Repeat("x", 8000), qrcode.WithRecoveryLevel(qrcode.Highest))
		assert.ErrorIs(t, err, qrcode.ErrFailedToGenerateQRCode)
	})
}

func TestGenerateDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.GenerateDataURI(provisioningURI)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)

	_, err = qrcode.GenerateDataURI("")
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
