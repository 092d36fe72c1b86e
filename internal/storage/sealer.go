package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

var ErrUnseal = errors.New("storage: cannot open sealed value")

// Sealer encrypts values at rest (bearer tokens) with a key derived from the session secret.
type Sealer struct {
	key [32]byte
}

func NewSealer(secret string) Sealer {
	return Sealer{key: sha256.Sum256([]byte(secret))}
}

func (s Sealer) Seal(plain []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

func (s Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < 24+secretbox.Overhead {
		return nil, ErrUnseal
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	out, ok := secretbox.Open(nil, sealed[24:], &nonce, &s.key)
	if !ok {
		return nil, ErrUnseal
	}
	return out, nil
}
