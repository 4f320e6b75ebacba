package auth

import (
	"bytes"
	"testing"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		tok, err := NewSessionToken()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		parsed, err := ParseSessionToken(tok.String())
		if err != nil {
			t.Fatalf("parse %q: %v", tok.String(), err)
		}
		if !bytes.Equal(parsed.Bytes(), tok.Bytes()) {
			t.Fatalf("round trip of %q: bytes %x != %x", tok.String(), parsed.Bytes(), tok.Bytes())
		}
	}
}

func TestSessionTokenKnownValues(t *testing.T) {
	tests := []struct {
		name  string
		token SessionToken
		str   string
	}{
		{"zero", SessionToken{}, "0"},
		{"one", SessionToken{1}, "1"},
		{"little endian layout", SessionToken{0, 1}, "256"},
		{"max", SessionToken{
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		}, "340282366920938463463374607431768211455"},
	}

	for _, tt := range tests {
		if got := tt.token.String(); got != tt.str {
			t.Errorf("%s: String() = %q, want %q", tt.name, got, tt.str)
		}
		parsed, err := ParseSessionToken(tt.str)
		if err != nil {
			t.Errorf("%s: parse: %v", tt.name, err)
			continue
		}
		if parsed != tt.token {
			t.Errorf("%s: parsed %x, want %x", tt.name, parsed[:], tt.token[:])
		}
	}
}

func TestParseSessionTokenMalformed(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"-1",
		"12.5",
		"340282366920938463463374607431768211456", // 2^128
		"99999999999999999999999999999999999999999999",
		"0x10",
	}
	for _, s := range inputs {
		if _, err := ParseSessionToken(s); err == nil {
			t.Errorf("parse %q: expected error", s)
		}
	}
}

func TestParseSessionTokenCanonicalOnly(t *testing.T) {
	// Non-canonical spellings of valid values must not alias a token: only
	// the exact String form parses.
	inputs := []string{
		"+123",
		"0042",
		"00",
		"_123",
		" 1",
		"1 ",
	}
	for _, s := range inputs {
		if _, err := ParseSessionToken(s); err == nil {
			t.Errorf("parse %q: expected error for non-canonical form", s)
		}
	}

	// The canonical forms still parse.
	for _, s := range []string{"0", "42", "340282366920938463463374607431768211455"} {
		tok, err := ParseSessionToken(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if tok.String() != s {
			t.Errorf("parse %q: String() = %q", s, tok.String())
		}
	}
}

func TestSessionTokenUniqueness(t *testing.T) {
	seen := make(map[SessionToken]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		tok, err := NewSessionToken()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[tok] = struct{}{}
	}
}
