package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// AESGCM encrypts payloads with AES-256-GCM. The key is derived from the
// configured passphrase with SHA-256. A fresh nonce is generated for every
// write and prepended to the ciphertext.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM returns an encrypting codec for the given passphrase.
func NewAESGCM(passphrase string) (*AESGCM, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: encryption enabled with empty key", types.ErrInvalidConfig)
	}
	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}
	return &AESGCM{aead: aead}, nil
}

func (*AESGCM) Name() string {
	return "aes-gcm"
}

func (c *AESGCM) Encode(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *AESGCM) Decode(data []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("%w: payload shorter than nonce", types.ErrDecodeFailed)
	}
	plaintext, err := c.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecodeFailed, err)
	}
	return plaintext, nil
}
