package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

var ErrWeakSecret = errors.New("session secret must be at least 32 bytes")

const MinSecretLen = 32

// CookieKeys are the HMAC and AES keys for the session cookie.
type CookieKeys struct {
	HashKey  []byte
	BlockKey []byte
}

// DeriveKey expands secret into n bytes bound to purpose.
func DeriveKey(secret []byte, purpose string, n int) ([]byte, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	key := make([]byte, n)
	r := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}

// DeriveCookieKeys derives independent signing and encryption keys so one
// configured secret can serve both.
func DeriveCookieKeys(secret string) (*CookieKeys, error) {
	hashKey, err := DeriveKey([]byte(secret), "ubs-console cookie hmac", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := DeriveKey([]byte(secret), "ubs-console cookie aes", 32)
	if err != nil {
		return nil, err
	}
	return &CookieKeys{HashKey: hashKey, BlockKey: blockKey}, nil
}

// DeriveCSRFKey returns the 32-byte key used by the CSRF middleware.
func DeriveCSRFKey(secret string) ([]byte, error) {
	return DeriveKey([]byte(secret), "ubs-console csrf", 32)
}
