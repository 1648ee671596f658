package domain

import "time"

// TokenKind discriminates the two single-use token types. The kinds are never
// interchangeable: a verification token cannot confirm a password reset and
// vice versa, regardless of value.
type TokenKind string

const (
	TokenKindVerification TokenKind = "verification"
	TokenKindReset        TokenKind = "reset"
)

// SingleUseToken is an opaque credential bound to one account and consumed
// exactly once. It carries no expiry of its own; staleness is judged against
// CreatedAt and a kind-specific TTL at consumption time.
type SingleUseToken struct {
	Value     string    `bson:"value"`
	Kind      TokenKind `bson:"kind"`
	CreatedAt time.Time `bson:"created_at"`
}

// Expired reports whether the token was minted before now-ttl.
func (t *SingleUseToken) Expired(now time.Time, ttl time.Duration) bool {
	return t.CreatedAt.Before(now.Add(-ttl))
}

// SessionClaims is the verified content of a session token. RefreshID is set
// only for refresh tokens; it keys the revocation set.
type SessionClaims struct {
	AccountID string
	Role      Role
	RefreshID string
	ExpiresAt time.Time
}
