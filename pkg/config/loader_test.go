package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/config"
)

type serviceConfig struct {
	Addr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	Issuer      string        `env:"ISSUER,required"`
	Attempts    int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"15m"`
	TrustedNets []string      `env:"TRUSTED_NETS" envSeparator:","`
}

func TestLoad(t *testing.T) {
	t.Run("defaults and overrides", func(t *testing.T) {
		t.Setenv("ISSUER", "Open Collective")
		t.Setenv("MAX_ATTEMPTS", "3")
		t.Setenv("TRUSTED_NETS", "10.0.0.0/8,192.168.0.0/16")

		cfg, err := config.Load[serviceConfig](config.WithEnvFiles())
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "Open Collective", cfg.Issuer)
		assert.Equal(t, 3, cfg.Attempts)
		assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
		assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, cfg.TrustedNets)
	})

	t.Run("missing required", func(t *testing.T) {
		t.Setenv("ISSUER", "")
		os.Unsetenv("ISSUER")

		_, err := config.Load[serviceConfig](config.WithEnvFiles())
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Setenv("TF_ISSUER", "prefixed")

		cfg, err := config.Load[serviceConfig](config.WithEnvFiles(), config.WithPrefix("TF_"))
		require.NoError(t, err)
		assert.Equal(t, "prefixed", cfg.Issuer)
	})

	t.Run("env file fills unset variables only", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "test.env")
		require.NoError(t, os.WriteFile(file, []byte("CFGTEST_ISSUER=from-file\nCFGTEST_HTTP_ADDR=:9090\n"), 0o600))
		t.Setenv("CFGTEST_HTTP_ADDR", ":7070")
		t.Cleanup(func() { os.Unsetenv("CFGTEST_ISSUER") })

		cfg, err := config.Load[serviceConfig](
			config.WithEnvFiles(file, filepath.Join(dir, "missing.env")),
			config.WithPrefix("CFGTEST_"),
		)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Issuer)
		assert.Equal(t, ":7070", cfg.Addr)
	})
}

func TestMustLoad(t *testing.T) {
	t.Setenv("MUSTTEST_ISSUER", "")
	os.Unsetenv("MUSTTEST_ISSUER")

	assert.Panics(t, func() {
		config.MustLoad[serviceConfig](config.WithEnvFiles(), config.WithPrefix("MUSTTEST_"))
	})
}
