package ports

import "github.com/hireiq/identity-service/internal/core/domain"

// TokenCodec mints and verifies tokens. It is pure computation: persistence
// of single-use tokens and revocation bookkeeping belong to the caller.
type TokenCodec interface {
	// MintSingleUse produces a cryptographically random opaque value suitable
	// for email-verification and password-reset links.
	MintSingleUse() (string, error)

	// MintSession produces a signed access/refresh token pair. The refresh
	// token carries refreshID as its unique identifier.
	MintSession(accountID string, role domain.Role) (access, refresh, refreshID string, err error)

	// MintAccess produces a signed access token only, used on refresh.
	MintAccess(accountID string, role domain.Role) (string, error)

	// VerifyAccess validates signature, expiry, and token type of an access
	// token. Fails with domain.ErrSignatureInvalid or domain.ErrTokenExpired.
	VerifyAccess(token string) (*domain.SessionClaims, error)

	// VerifyRefresh validates a refresh token and returns its claims
	// including the refresh identifier for revocation lookup.
	VerifyRefresh(token string) (*domain.SessionClaims, error)
}
