package auth

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Revocations remembers logged-out token ids until the tokens would have
// expired anyway; after that the signature check rejects them on its own.
type Revocations struct{ c *gocache.Cache }

func NewRevocations() *Revocations {
	return &Revocations{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

// Revoke marks the principal's token as unusable.
func (r *Revocations) Revoke(p *Principal) {
	if r == nil || p == nil || p.TokenID == "" {
		return
	}
	ttl := time.Until(p.ExpiresAt)
	if ttl <= 0 {
		return
	}
	r.c.Set(p.TokenID, struct{}{}, ttl)
}

// IsRevoked reports whether the token id was revoked.
func (r *Revocations) IsRevoked(tokenID string) bool {
	if r == nil {
		return false
	}
	_, found := r.c.Get(tokenID)
	return found
}
