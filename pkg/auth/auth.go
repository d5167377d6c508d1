// Package auth manages bearer tokens for the timekit metrics server, with
// token lifetimes tracked on the monotonic clock.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/timekit-io/timekit/pkg/clock"
	"github.com/timekit-io/timekit/pkg/timespan"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenInfo contains token metadata
type TokenInfo struct {
	Hash      string
	Subject   string
	IssuedAt  timespan.Instant
	ExpiresAt timespan.Instant
}

// TokenManager manages API authentication tokens
type TokenManager struct {
	tokens map[string]*TokenInfo
	mu     sync.RWMutex
	clk    clock.Clock
}

// NewTokenManager creates a new token manager
func NewTokenManager(clk clock.Clock) *TokenManager {
	if clk == nil {
		clk = clock.System()
	}
	return &TokenManager{
		tokens: make(map[string]*TokenInfo),
		clk:    clk,
	}
}

// GenerateToken issues a token for the subject, valid for the given
// lifetime. The returned plaintext is shown once; only its bcrypt hash is
// stored.
func (tm *TokenManager) GenerateToken(subject string, lifetime timespan.Duration) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}

	now := tm.clk.Now()
	expires, ok := now.CheckedAdd(lifetime)
	if !ok {
		return "", fmt.Errorf("token lifetime %v out of range", lifetime)
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.tokens[subject] = &TokenInfo{
		Hash:      string(hash),
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: expires,
	}

	return token, nil
}

// ValidateToken validates an authentication token
func (tm *TokenManager) ValidateToken(subject, token string) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	info, ok := tm.tokens[subject]
	if !ok {
		return ErrInvalidToken
	}
	if tm.clk.Now().After(info.ExpiresAt) {
		return ErrTokenExpired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(info.Hash), []byte(token)); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// RevokeToken revokes the subject's token
func (tm *TokenManager) RevokeToken(subject string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	delete(tm.tokens, subject)
}

// CleanupExpiredTokens removes expired tokens, returning how many were
// dropped.
func (tm *TokenManager) CleanupExpiredTokens() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	now := tm.clk.Now()
	dropped := 0
	for subject, info := range tm.tokens {
		if now.After(info.ExpiresAt) {
			delete(tm.tokens, subject)
			dropped++
		}
	}
	return dropped
}

// Middleware returns an HTTP middleware validating the X-API-Subject and
// X-API-Token headers against the manager.
func (tm *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := r.Header.Get("X-API-Subject")
		token := r.Header.Get("X-API-Token")
		if err := tm.ValidateToken(subject, token); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
