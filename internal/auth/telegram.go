package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// ErrSignatureMismatch is returned when a Telegram login payload fails
// signature verification.
var ErrSignatureMismatch = errors.New("telegram login signature mismatch")

// TelegramLoginPayload is the signed response posted by the Telegram login
// widget after a user authenticates with the bot.
type TelegramLoginPayload struct {
	AuthDate  int64  `json:"auth_date"`
	FirstName string `json:"first_name"`
	Hash      string `json:"hash"`
	ID        int64  `json:"id"`
	LastName  string `json:"last_name"`
	PhotoURL  string `json:"photo_url"`
	Username  string `json:"username"`
}

// VerifyTelegramLogin checks the payload's HMAC signature against the bot
// token. The signing key is the SHA-256 digest of the bot token; the signed
// input is the data-check string defined by the widget protocol. Comparison
// is constant-time.
func VerifyTelegramLogin(p TelegramLoginPayload, botToken string) error {
	secret := sha256.Sum256([]byte(botToken))

	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(dataCheckString(p)))
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(p.Hash)) {
		return ErrSignatureMismatch
	}
	return nil
}

// dataCheckString serializes the payload fields (hash excluded) in
// alphabetical order as key=value lines joined by \n, with no trailing
// newline. The widget signs exactly this byte sequence.
func dataCheckString(p TelegramLoginPayload) string {
	fields := []struct{ key, value string }{
		{"auth_date", strconv.FormatInt(p.AuthDate, 10)},
		{"first_name", p.FirstName},
		{"id", strconv.FormatInt(p.ID, 10)},
		{"last_name", p.LastName},
		{"photo_url", p.PhotoURL},
		{"username", p.Username},
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(f.value)
	}
	return b.String()
}
