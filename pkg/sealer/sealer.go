// Package sealer encrypts small blobs with NaCl secretbox.
package sealer

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	ErrInvalidKey = errors.New("sealer: key must be 32 bytes")
	ErrOpen       = errors.New("sealer: cannot open sealed data")
)

// Sealer seals and opens blobs. A Sealer without a key passes data through.
type Sealer struct {
	key *[keySize]byte
}

// New creates a sealer. An empty key disables encryption.
func New(key []byte) (*Sealer, error) {
	if len(key) == 0 {
		return &Sealer{}, nil
	}
	if len(key) != keySize {
		return nil, ErrInvalidKey
	}
	var k [keySize]byte
	copy(k[:], key)
	return &Sealer{key: &k}, nil
}

// Enabled reports whether data is encrypted
func (s *Sealer) Enabled() bool {
	return s.key != nil
}

// Seal returns nonce||box
func (s *Sealer) Seal(data []byte) ([]byte, error) {
	if s.key == nil {
		return append([]byte(nil), data...), nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], data, &nonce, s.key), nil
}

// Open reverses Seal
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if s.key == nil {
		return append([]byte(nil), sealed...), nil
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, s.key)
	if !ok {
		return nil, ErrOpen
	}
	return out, nil
}
