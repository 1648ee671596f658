package ports

import (
	"context"

	"github.com/hireiq/identity-service/internal/core/domain"
)

// RegisterInput carries everything needed to create an account.
type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
	PhoneNumber     string
	Role            domain.Role
}

// LoginResult is the session issued on successful authentication.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Account      domain.AccountSummary
}

// UpdateProfileInput is a partial profile update; nil fields are left
// untouched. Fields that do not belong to the account's role are rejected.
type UpdateProfileInput struct {
	Bio      *string
	Location *string

	// Candidate fields.
	Skills          *[]string
	ExperienceYears *int
	Education       *[]string

	// Recruiter fields.
	CompanyName        *string
	CompanyWebsite     *string
	CompanyDescription *string
}

// IdentityService orchestrates the account and token lifecycle. Operations
// are transactional: either the state transition and its token side effect
// both land, or neither does. Authenticated operations take the caller's
// account id explicitly; there is no ambient identity.
type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.AccountSummary, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)

	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error

	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword, confirm string) error
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword, confirm string) error

	Account(ctx context.Context, accountID string) (*domain.AccountSummary, error)
	Profile(ctx context.Context, accountID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, accountID string, in UpdateProfileInput) (*domain.Profile, error)

	SetAccountActive(ctx context.Context, accountID string, active bool) error
}
