package usecase

import (
	"crypto/sha256"
	"sync"
	"time"

	"github.com/secmon-lab/toolforge/pkg/domain/model/auth"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedUser struct {
	user      *auth.User
	expiresAt time.Time
}

// authCache remembers verified tokens so repeated requests skip signature
// checks. Entries never outlive the token itself.
type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func tokenKey(token string) [sha256.Size]byte {
	return sha256.Sum256([]byte(token))
}

func (c *authCache) get(token string) (*auth.User, bool) {
	key := tokenKey(token)
	val, ok := c.cache.Load(key)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedUser)
	if time.Now().After(cached.expiresAt) {
		c.cache.Delete(key)
		return nil, false
	}

	return cached.user, true
}

func (c *authCache) set(token string, user *auth.User, tokenExpiry time.Time) {
	expiresAt := time.Now().Add(authCacheTTL)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expiresAt) {
		expiresAt = tokenExpiry
	}
	c.cache.Store(tokenKey(token), &cachedUser{
		user:      user,
		expiresAt: expiresAt,
	})
}
