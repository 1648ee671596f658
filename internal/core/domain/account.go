package domain

import (
	"errors"
	"strings"
	"time"
)

// Role classifies an account on the platform. It is immutable after
// registration.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleRecruiter, RoleAdmin:
		return true
	}
	return false
}

var ErrAccountNotFound = errors.New("account not found")
var ErrDuplicateEmail = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAccountDeactivated = errors.New("account deactivated")
var ErrAlreadyVerified = errors.New("email already verified")
var ErrTokenInvalid = errors.New("invalid or expired token")
var ErrTokenExpired = errors.New("token expired")
var ErrSignatureInvalid = errors.New("invalid token signature")
var ErrTokenRevoked = errors.New("token revoked")
var ErrWrongOldPassword = errors.New("old password is incorrect")
var ErrWeakPassword = errors.New("password does not meet minimum requirements")
var ErrPasswordMismatch = errors.New("passwords do not match")
var ErrInvalidRole = errors.New("invalid role")
var ErrForbidden = errors.New("access forbidden")

// Account is the identity aggregate root. Email is stored normalized
// (lowercase) and is unique across the platform. The password hash is opaque
// to the core; only the hasher can interpret it.
//
// VerificationToken and ResetToken are independent slots: minting a token of
// one kind replaces only the previous token of that kind.
type Account struct {
	ID                string          `json:"id" bson:"_id,omitempty"`
	Email             string          `json:"email" bson:"email"`
	FirstName         string          `json:"first_name" bson:"first_name"`
	LastName          string          `json:"last_name" bson:"last_name"`
	PhoneNumber       string          `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Role              Role            `json:"role" bson:"role"`
	PasswordHash      []byte          `json:"-" bson:"password_hash"`
	EmailVerified     bool            `json:"email_verified" bson:"email_verified"`
	Active            bool            `json:"active" bson:"active"`
	VerificationToken *SingleUseToken `json:"-" bson:"verification_token,omitempty"`
	ResetToken        *SingleUseToken `json:"-" bson:"reset_token,omitempty"`
	Profile           Profile         `json:"profile" bson:"profile"`
	CreatedAt         time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" bson:"updated_at"`
}

// AccountSummary is the caller-facing projection of an Account. It never
// carries credentials or outstanding tokens.
type AccountSummary struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Role          Role   `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	Active        bool   `json:"active"`
}

// Summary returns the caller-facing projection of the account.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:            a.ID,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Role:          a.Role,
		EmailVerified: a.EmailVerified,
		Active:        a.Active,
	}
}

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive regardless of how the caller typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
