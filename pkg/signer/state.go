package signer

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidState is returned for malformed or tampered state values.
	ErrInvalidState = errors.New("invalid oauth state")
	// ErrExpiredState is returned when the state outlived its TTL.
	ErrExpiredState = errors.New("oauth state expired")
)

// StateSigner issues and verifies the OAuth state parameter round-tripped through the identity provider.
// A state is bound to one provider and expires after ttl.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner constructs a signer with the provided secret and TTL.
func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long issued states remain valid.
func (s *StateSigner) TTL() time.Duration {
	return s.ttl
}

// Generate returns a fresh state for provider.
func (s *StateSigner) Generate(provider string) (string, error) {
	if provider == "" {
		return "", fmt.Errorf("provider required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("signing secret missing")
	}
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	encodedNonce := base64.RawURLEncoding.EncodeToString(nonce)
	expires := strconv.FormatInt(s.now().Add(s.ttl).Unix(), 10)
	signature := s.sign(provider, expires, encodedNonce)
	return strings.Join([]string{encodedNonce, expires, signature}, "."), nil
}

// Verify checks that state was issued by this signer for provider and has not expired.
func (s *StateSigner) Verify(state, provider string) error {
	parts := strings.Split(state, ".")
	if len(parts) != 3 {
		return ErrInvalidState
	}
	encodedNonce, expires, signature := parts[0], parts[1], parts[2]

	expected := s.sign(provider, expires, encodedNonce)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidState
	}

	expUnix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidState
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return ErrExpiredState
	}
	return nil
}

func (s *StateSigner) sign(provider, expires, nonce string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(provider + "|" + expires + "|" + nonce))
	return hex.EncodeToString(mac.Sum(nil))
}
