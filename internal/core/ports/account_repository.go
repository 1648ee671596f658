package ports

import (
	"context"
	"time"

	"github.com/hireiq/identity-service/internal/core/domain"
)

// AccountRepository is the durable credential store. Implementations must
// provide per-account atomic updates: the Consume* operations are single
// compare-and-set steps so that two callers presenting the same token can
// never both succeed.
type AccountRepository interface {
	// Create persists a new account. Returns domain.ErrDuplicateEmail when
	// the normalized email is already taken.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)

	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)

	// SetToken stores a fresh single-use token in the slot matching its kind,
	// replacing any previous token of that kind.
	SetToken(ctx context.Context, accountID string, token domain.SingleUseToken) error

	// ConsumeVerificationToken atomically marks the holding account verified
	// and clears the token, provided the account is unverified and the token
	// was minted at or after cutoff. Returns domain.ErrAlreadyVerified when
	// the token belongs to a verified account, domain.ErrTokenInvalid when no
	// live token matches.
	ConsumeVerificationToken(ctx context.Context, value string, cutoff time.Time) (*domain.Account, error)

	// ConsumeResetToken atomically replaces the password hash and clears the
	// reset token, provided the account is active and the token was minted at
	// or after cutoff. Returns domain.ErrTokenInvalid when no live token
	// matches.
	ConsumeResetToken(ctx context.Context, value string, cutoff time.Time, newHash []byte) (*domain.Account, error)

	UpdatePassword(ctx context.Context, accountID string, newHash []byte) error
	UpdateProfile(ctx context.Context, accountID string, profile domain.Profile) error
	SetActive(ctx context.Context, accountID string, active bool) error
}
