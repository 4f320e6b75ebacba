package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// SessionToken is a 128-bit session identifier. The array holds the value in
// little-endian byte order, which is also the layout stored in the database.
// The cookie carries the decimal string form; both forms round-trip exactly.
type SessionToken [16]byte

var errMalformedToken = errors.New("malformed session token")

// NewSessionToken draws a fresh 128-bit token from the OS entropy source.
// crypto/rand is safe for concurrent callers, so no extra locking is needed.
func NewSessionToken() (SessionToken, error) {
	var t SessionToken
	if _, err := rand.Read(t[:]); err != nil {
		return SessionToken{}, fmt.Errorf("generate session token: %w", err)
	}
	return t, nil
}

// String returns the decimal form of the token, used as the cookie value.
func (t SessionToken) String() string {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = t[15-i]
	}
	return new(big.Int).SetBytes(be).String()
}

// Bytes returns the 16-byte little-endian form, used as the storage key.
func (t SessionToken) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, t[:])
	return b
}

// ParseSessionToken inverts String, accepting only the canonical decimal
// form: digits only, no sign, no leading zeros. Each token therefore has
// exactly one cookie representation. Anything else is rejected; callers
// treat that the same as an unknown token rather than an error worth
// surfacing.
func ParseSessionToken(s string) (SessionToken, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return SessionToken{}, errMalformedToken
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return SessionToken{}, errMalformedToken
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.BitLen() > 128 {
		return SessionToken{}, errMalformedToken
	}

	be := n.FillBytes(make([]byte, 16))
	var t SessionToken
	for i := 0; i < 16; i++ {
		t[i] = be[15-i]
	}
	return t, nil
}
