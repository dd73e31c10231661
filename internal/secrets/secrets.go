// Package secrets seals and opens the Home Assistant token with tink AEAD keysets.
package secrets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/tink/go/aead"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/tink"
	"github.com/koios/epaper-weather/internal/config"
)

// ErrNoKeyset indicates a sealed token was configured without a keyset
var ErrNoKeyset = errors.New("secrets: keyset is required to open a sealed token")

// associatedData binds ciphertexts to their use
var associatedData = []byte("epaper-weather/hass-token")

// Sealer encrypts and decrypts tokens
type Sealer struct {
	primitive tink.AEAD
}

// NewKeyset generates a fresh AES256-GCM keyset
func NewKeyset() (*keyset.Handle, error) {
	h, err := keyset.NewHandle(aead.AES256GCMKeyTemplate())
	if err != nil {
		return nil, fmt.Errorf("failed to generate keyset: %w", err)
	}
	return h, nil
}

// EncodeKeyset serializes h; with a non-nil kek the keyset is encrypted.
func EncodeKeyset(h *keyset.Handle, kek tink.AEAD) (string, error) {
	var buf bytes.Buffer
	w := keyset.NewBinaryWriter(&buf)

	var err error
	if kek == nil {
		err = insecurecleartextkeyset.Write(h, w)
	} else {
		err = h.Write(w, kek)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write keyset: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// NewSealer wraps a keyset handle
func NewSealer(h *keyset.Handle) (*Sealer, error) {
	a, err := aead.New(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create AEAD primitive: %w", err)
	}
	return &Sealer{primitive: a}, nil
}

// FromConfig loads the keyset, decrypting it with the key encryption keyset when one is set.
func FromConfig(cfg config.SecretsConfig) (*Sealer, error) {
	if strings.TrimSpace(cfg.KeysetB64) == "" {
		return nil, ErrNoKeyset
	}

	var kek tink.AEAD
	if strings.TrimSpace(cfg.KeyEncryptionKeysetB64) != "" {
		kh, err := readCleartext(cfg.KeyEncryptionKeysetB64)
		if err != nil {
			return nil, fmt.Errorf("failed to read key encryption keyset: %w", err)
		}
		kek, err = aead.New(kh)
		if err != nil {
			return nil, fmt.Errorf("failed to create key encryption primitive: %w", err)
		}
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cfg.KeysetB64))
	if err != nil {
		return nil, fmt.Errorf("failed to decode keyset: %w", err)
	}

	var h *keyset.Handle
	if kek != nil {
		h, err = keyset.Read(keyset.NewBinaryReader(bytes.NewReader(raw)), kek)
	} else {
		h, err = insecurecleartextkeyset.Read(keyset.NewBinaryReader(bytes.NewReader(raw)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyset: %w", err)
	}

	return NewSealer(h)
}

func readCleartext(b64 string) (*keyset.Handle, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, err
	}
	return insecurecleartextkeyset.Read(keyset.NewBinaryReader(bytes.NewReader(raw)))
}

// Seal encrypts plaintext and returns base64 ciphertext
func (s *Sealer) Seal(plaintext string) (string, error) {
	ct, err := s.primitive.Encrypt([]byte(plaintext), associatedData)
	if err != nil {
		return "", fmt.Errorf("failed to seal: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Open decrypts base64 ciphertext produced by Seal
func (s *Sealer) Open(sealedB64 string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sealedB64))
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed token: %w", err)
	}
	pt, err := s.primitive.Decrypt(ct, associatedData)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed token: %w", err)
	}
	return string(pt), nil
}

// ResolveToken returns the plain token, opening the sealed one when configured.
func ResolveToken(hass config.HassConfig, cfg config.SecretsConfig) (string, error) {
	if strings.TrimSpace(hass.SealedTokenB64) == "" {
		return hass.Token, nil
	}
	sealer, err := FromConfig(cfg)
	if err != nil {
		return "", err
	}
	return sealer.Open(hass.SealedTokenB64)
}
