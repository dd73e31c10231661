// Command sealtoken creates keysets and seals Home Assistant tokens for
// HASS_TOKEN_SEALED_B64.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/koios/epaper-weather/internal/config"
	"github.com/koios/epaper-weather/internal/secrets"
)

func main() {
	genKeyset := flag.Bool("gen-keyset", false, "print a new base64 cleartext keyset and exit")
	token := flag.String("token", "", "token to seal; read from stdin when empty")
	keyset := flag.String("keyset", os.Getenv("SECRETS_KEYSET_B64"), "base64 keyset used for sealing")
	kek := flag.String("kek", os.Getenv("SECRETS_KEY_ENCRYPTION_KEYSET_B64"), "base64 key encryption keyset, if the keyset is encrypted")
	flag.Parse()

	if *genKeyset {
		h, err := secrets.NewKeyset()
		if err != nil {
			fatal(err)
		}
		encoded, err := secrets.EncodeKeyset(h, nil)
		if err != nil {
			fatal(err)
		}
		fmt.Println(encoded)
		return
	}

	sealer, err := secrets.FromConfig(config.SecretsConfig{
		KeysetB64:              *keyset,
		KeyEncryptionKeysetB64: *kek,
	})
	if err != nil {
		fatal(err)
	}

	plaintext := *token
	if plaintext == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fatal(fmt.Errorf("failed to read token from stdin: %w", err))
		}
		plaintext = strings.TrimSpace(line)
	}
	if plaintext == "" {
		fatal(fmt.Errorf("token is empty"))
	}

	sealed, err := sealer.Seal(plaintext)
	if err != nil {
		fatal(err)
	}
	fmt.Println(sealed)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "sealtoken:", err)
	os.Exit(1)
}
