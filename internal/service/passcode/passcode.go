package passcode

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const keyInfo = "solidarity-pathways/driver-passcode"

// Deriver computes driver passcodes from a server secret. The secret is
// never used directly; an HKDF-expanded key is.
type Deriver struct {
	key []byte
}

func NewDeriver(secret string) (*Deriver, error) {
	if secret == "" {
		return nil, errors.New("passcode secret is required")
	}

	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive passcode key: %w", err)
	}

	return &Deriver{key: key}, nil
}

// Derive returns base64url(HMAC-SHA256(key, pathID 0x00 magicCode 0x00 lower(email))).
func (d *Deriver) Derive(pathID, magicCode, email string) string {
	return base64.RawURLEncoding.EncodeToString(d.mac(pathID, magicCode, email))
}

// Matches compares candidate with the expected passcode in constant time.
// Decoding is strict so non-zero padding bits in the last character fail.
func (d *Deriver) Matches(candidate, pathID, magicCode, email string) bool {
	raw, err := base64.RawURLEncoding.Strict().DecodeString(candidate)
	if err != nil {
		return false
	}
	return hmac.Equal(raw, d.mac(pathID, magicCode, email))
}

func (d *Deriver) mac(pathID, magicCode, email string) []byte {
	m := hmac.New(sha256.New, d.key)
	m.Write([]byte(pathID))
	m.Write([]byte{0})
	m.Write([]byte(magicCode))
	m.Write([]byte{0})
	m.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return m.Sum(nil)
}
