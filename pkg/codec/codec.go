// Package codec defines the encoding applied to persisted store files. A
// store writes and reads its payloads through a Codec chosen at
// construction, so plain and encrypted files share one persistence path.
package codec

import (
	"fmt"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// Codec transforms store payloads on their way to and from disk.
type Codec interface {
	// Name identifies the codec in logs and configuration.
	Name() string
	// Encode transforms plaintext into its persisted form.
	Encode(plaintext []byte) ([]byte, error)
	// Decode reverses Encode. Failures are reported as types.ErrDecodeFailed.
	Decode(data []byte) ([]byte, error)
}

// New returns the codec for the given name. Supported names are "plain"
// (or empty) and "aes-gcm", which requires a non-empty key.
func New(name, key string) (Codec, error) {
	switch name {
	case "", "plain":
		return NewPlain(), nil
	case "aes-gcm":
		return NewAESGCM(key)
	default:
		return nil, fmt.Errorf("%w: unknown codec %q", types.ErrInvalidConfig, name)
	}
}
