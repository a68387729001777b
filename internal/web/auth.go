package web

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	tokenTypeSession = "session"
	tokenTypeNonce   = "nonce"
)

type signedPayload struct {
	Exp int64  `json:"exp"`
	Sub string `json:"sub"`           // user login (session) or user id (nonce)
	Typ string `json:"typ,omitempty"` // "session"|"nonce"
	Act string `json:"act,omitempty"` // nonce action
	N   string `json:"n,omitempty"`
}

var (
	errTokenFormat    = errors.New("invalid token format")
	errTokenSignature = errors.New("invalid token signature")
	errTokenPayload   = errors.New("invalid token payload")
	errTokenExpired   = errors.New("token expired")
)

func secretKeyPath(dir string) string {
	return filepath.Join(filepath.Clean(strings.TrimSpace(dir)), "web", "secret.key")
}

func loadOrInitSecretKey(dir string) ([]byte, error) {
	path := secretKeyPath(dir)
	if b, err := os.ReadFile(path); err == nil && len(strings.TrimSpace(string(b))) > 0 {
		return []byte(strings.TrimSpace(string(b))), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	enc := base64.RawURLEncoding.EncodeToString(raw)
	if err := os.WriteFile(path, []byte(enc+"\n"), 0o600); err != nil {
		return nil, err
	}
	return []byte(enc), nil
}

func signToken(secret []byte, payload signedPayload) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(p))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return p + "." + sig, nil
}

func verifyToken(secret []byte, token string, now time.Time) (signedPayload, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 2 {
		return signedPayload{}, errTokenFormat
	}
	p, sig := parts[0], parts[1]

	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(p))
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(mac.Sum(nil), got) {
		return signedPayload{}, errTokenSignature
	}

	raw, err := base64.RawURLEncoding.DecodeString(p)
	if err != nil {
		return signedPayload{}, errTokenPayload
	}
	var sp signedPayload
	if err := json.Unmarshal(raw, &sp); err != nil {
		return signedPayload{}, errTokenPayload
	}
	if sp.Exp == 0 || strings.TrimSpace(sp.Sub) == "" {
		return signedPayload{}, errTokenPayload
	}
	if now.Unix() > sp.Exp {
		return signedPayload{}, errTokenExpired
	}
	return sp, nil
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func newSessionToken(secret []byte, login string, ttl time.Duration, now time.Time) (string, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return "", errors.New("missing login")
	}
	n, err := newNonce()
	if err != nil {
		return "", err
	}
	return signToken(secret, signedPayload{
		Typ: tokenTypeSession,
		Sub: login,
		N:   n,
		Exp: now.Add(ttl).Unix(),
	})
}

// newActionNonce issues an anti-forgery token bound to one user and one action name.
func newActionNonce(secret []byte, userID int64, action string, ttl time.Duration, now time.Time) (string, error) {
	if userID <= 0 || strings.TrimSpace(action) == "" {
		return "", errors.New("missing user or action")
	}
	n, err := newNonce()
	if err != nil {
		return "", err
	}
	return signToken(secret, signedPayload{
		Typ: tokenTypeNonce,
		Sub: strconv.FormatInt(userID, 10),
		Act: action,
		N:   n,
		Exp: now.Add(ttl).Unix(),
	})
}

func verifyActionNonce(secret []byte, token string, userID int64, action string, now time.Time) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	sp, err := verifyToken(secret, token, now)
	if err != nil {
		return false
	}
	return sp.Typ == tokenTypeNonce && sp.Act == action && sp.Sub == strconv.FormatInt(userID, 10)
}
