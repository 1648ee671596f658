package ports

import (
	"context"
	"time"
)

// SessionRegistry tracks revoked refresh-token identifiers. Membership is the
// only thing that matters: a refresh identifier present in the set must never
// again yield a new access token. Revoke is idempotent.
//
// The ttl passed to Revoke is the remaining lifetime of the refresh token
// itself; implementations may drop entries after it elapses, since an expired
// token fails signature/expiry checks before the registry is ever consulted.
type SessionRegistry interface {
	Revoke(ctx context.Context, refreshID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, refreshID string) (bool, error)
}
