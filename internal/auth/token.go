// Package auth caches the short-lived upload credential issued by the
// remote API. The credential is a signed token whose middle segment embeds
// an expiry claim; the cache refreshes it shortly before that expiry.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/webfoundry/pages/errors"
)

// expirySkew is subtracted from the token's expiry so a token is refreshed
// before the remote actually rejects it.
const expirySkew = 60 * time.Second

// TokenFunc fetches a fresh upload credential from the remote API.
type TokenFunc func(ctx context.Context) (string, error)

// Cache lazily fetches and caches an upload credential. A Cache is scoped
// to a single deployment; it is safe for use by the concurrent upload
// workers of that deployment.
type Cache struct {
	fetch TokenFunc
	now   func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewCache returns a Cache that obtains credentials through fetch.
func NewCache(fetch TokenFunc) *Cache {
	return &Cache{fetch: fetch, now: time.Now}
}

// Get returns the cached credential, fetching a fresh one when none is held
// or the held one has reached its (skew-adjusted) expiry.
func (c *Cache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiry) {
		return c.token, nil
	}

	token, err := c.fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching upload token: %w", err)
	}
	expiry, err := tokenExpiry(token)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiry = expiry.Add(-expirySkew)
	return token, nil
}

// tokenExpiry extracts the expiry timestamp from the token's claims. The
// token is a dot-separated three-part string whose middle segment is
// base64url-encoded JSON with an "exp" field in seconds since epoch. The
// signature is not verified; only the remote can do that.
func tokenExpiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %d segments, want 3", errors.ErrInvalidToken, len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: decoding claims: %v", errors.ErrInvalidToken, err)
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing claims: %v", errors.ErrInvalidToken, err)
	}
	if claims.Exp == 0 {
		return time.Time{}, fmt.Errorf("%w: no expiry claim", errors.ErrInvalidToken)
	}
	return time.Unix(claims.Exp, 0), nil
}
