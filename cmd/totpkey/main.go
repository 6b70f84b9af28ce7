// Command totpkey prints a random AES-256 key for TOTP_ENCRYPTION_KEY.
package main

import (
	"fmt"
	"os"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

func main() {
	key, err := totp.GenerateEncodedEncryptionKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate key:", err)
		os.Exit(1)
	}
	fmt.Println(key)
}
