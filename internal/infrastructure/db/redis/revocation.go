package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tombstoneTTL covers revocations of tokens that are already at (or past)
// their own expiry: keep the entry briefly so a clock-skewed verifier still
// sees it.
const tombstoneTTL = time.Minute

// RevocationSet is the Redis-backed refresh-token blacklist. Entries expire
// with the token they revoke, which bounds the set's size without a separate
// eviction pass.
type RevocationSet struct {
	client *redis.Client
}

// NewRevocationSet creates a RevocationSet wrapping the given Redis client.
func NewRevocationSet(client *redis.Client) *RevocationSet {
	return &RevocationSet{client: client}
}

// Revoke records the refresh identifier for ttl. Re-revoking is a no-op
// beyond refreshing the entry's expiry.
func (s *RevocationSet) Revoke(ctx context.Context, refreshID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = tombstoneTTL
	}
	if err := s.client.Set(ctx, s.key(refreshID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the refresh identifier has been revoked.
func (s *RevocationSet) IsRevoked(ctx context.Context, refreshID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(refreshID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationSet) key(refreshID string) string {
	return "revoked:" + refreshID
}
