// Package resettoken issues and checks password reset links.
//
// A token is "<timestamp base36>-<hmac hex>" where the HMAC covers the user id,
// the current password hash, the last login time and the timestamp. Changing
// the password or logging in again changes the MAC input, so a token can be
// redeemed once and is otherwise bounded by the TTL.
package resettoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedUID is returned when the uid part of a reset link is not valid base64url.
var ErrMalformedUID = errors.New("malformed uid")

// Subject is the user state a token is bound to.
type Subject struct {
	UserID       string
	PasswordHash string
	LastLogin    *time.Time
}

// Generator makes and checks reset tokens.
type Generator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewGenerator returns a Generator signing with secret. Tokens older than ttl fail Check.
func NewGenerator(secret string, ttl time.Duration) *Generator {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Generator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Make returns a fresh token for sub.
func (g *Generator) Make(sub Subject) string {
	ts := strconv.FormatInt(g.now().Unix(), 36)
	return ts + "-" + g.mac(sub, ts)
}

// Check reports whether token is valid for sub at the current time.
func (g *Generator) Check(sub Subject, token string) bool {
	if sub.UserID == "" || token == "" {
		return false
	}
	ts, sig, ok := strings.Cut(token, "-")
	if !ok || ts == "" || sig == "" {
		return false
	}
	issued, err := strconv.ParseInt(ts, 36, 64)
	if err != nil {
		return false
	}
	if !hmac.Equal([]byte(g.mac(sub, ts)), []byte(sig)) {
		return false
	}
	age := g.now().Sub(time.Unix(issued, 0))
	return age >= 0 && age <= g.ttl
}

func (g *Generator) mac(sub Subject, ts string) string {
	var login string
	if sub.LastLogin != nil {
		login = strconv.FormatInt(sub.LastLogin.UTC().Truncate(time.Second).Unix(), 10)
	}
	m := hmac.New(sha256.New, g.secret)
	_, _ = m.Write([]byte(strings.Join([]string{sub.UserID, sub.PasswordHash, login, ts}, "|")))
	return hex.EncodeToString(m.Sum(nil))[:40]
}

// EncodeUID renders a user id for use in a reset link path.
func EncodeUID(userID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(userID))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uid, "="))
	if err != nil || len(raw) == 0 {
		return "", ErrMalformedUID
	}
	return string(raw), nil
}
