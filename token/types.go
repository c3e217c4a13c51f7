package token

import (
	"context"
	"time"
)

// Credential is a short-lived authentication credential for one user.
// It is single-use per session and never cached across restarts.
type Credential struct {
	Token     string
	UserID    string
	ExpiresAt time.Time // zero when the token carries no readable expiry
}

// ValidFor reports whether the credential can be reused for userID at the
// given time. Credentials without a readable expiry are never reused; the
// caller fetches a fresh one instead.
func (c *Credential) ValidFor(userID string, now time.Time) bool {
	if c == nil || c.Token == "" || c.UserID != userID {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return false
	}
	return now.Before(c.ExpiresAt)
}

// Provider fetches credentials from a remote issuer.
// Each call makes a fresh request; retry and reuse are caller policy.
type Provider interface {
	FetchToken(ctx context.Context, userID string) (*Credential, error)
}
