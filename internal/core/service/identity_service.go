package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hireiq/identity-service/internal/core/domain"
	"github.com/hireiq/identity-service/internal/core/ports"
)

// IdentityConfig tunes token staleness and the links embedded in outgoing
// mail.
type IdentityConfig struct {
	// VerificationTokenTTL bounds how long an email-verification link stays
	// usable. Zero means 24h.
	VerificationTokenTTL time.Duration
	// ResetTokenTTL bounds how long a password-reset link stays usable.
	// Zero means 1h.
	ResetTokenTTL time.Duration
	// FrontendBaseURL prefixes verification and reset links.
	FrontendBaseURL string
}

// Identity implements ports.IdentityService on top of the credential store,
// the session registry, and the token codec.
type Identity struct {
	accounts ports.AccountRepository
	sessions ports.SessionRegistry
	codec    ports.TokenCodec
	hasher   ports.PasswordHasher
	notifier ports.Notifier
	cfg      IdentityConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewIdentity wires the identity service. Zero TTLs in cfg get defaults.
func NewIdentity(
	accounts ports.AccountRepository,
	sessions ports.SessionRegistry,
	codec ports.TokenCodec,
	hasher ports.PasswordHasher,
	notifier ports.Notifier,
	cfg IdentityConfig,
	log zerolog.Logger,
) *Identity {
	if cfg.VerificationTokenTTL <= 0 {
		cfg.VerificationTokenTTL = 24 * time.Hour
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	if cfg.FrontendBaseURL == "" {
		cfg.FrontendBaseURL = "http://localhost:3000"
	}
	return &Identity{
		accounts: accounts,
		sessions: sessions,
		codec:    codec,
		hasher:   hasher,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Register creates an Unverified, Active account and mails a verification
// link. The email is normalized before the uniqueness check; a collision
// fails with ErrDuplicateEmail, never an overwrite.
func (s *Identity) Register(ctx context.Context, in ports.RegisterInput) (*domain.AccountSummary, error) {
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if in.Password != in.PasswordConfirm {
		return nil, domain.ErrPasswordMismatch
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	value, err := s.codec.MintSingleUse()
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		Email:         domain.NormalizeEmail(in.Email),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		PhoneNumber:   in.PhoneNumber,
		Role:          in.Role,
		PasswordHash:  hash,
		EmailVerified: false,
		Active:        true,
		VerificationToken: &domain.SingleUseToken{
			Value:     value,
			Kind:      domain.TokenKindVerification,
			CreatedAt: now,
		},
		Profile:   domain.NewProfile(in.Role),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.sendVerificationMail(created.Email, value)

	s.log.Info().Str("account_id", created.ID).Str("role", string(created.Role)).Msg("account registered")

	summary := created.Summary()
	return &summary, nil
}

// Login verifies credentials and issues a session. A missing account and a
// wrong password are indistinguishable to the caller.
func (s *Identity) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	account, err := s.accounts.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.Active {
		return nil, domain.ErrAccountDeactivated
	}

	access, refresh, refreshID, err := s.codec.MintSession(account.ID, account.Role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Str("refresh_id", refreshID).Msg("session issued")

	return &ports.LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Account:      account.Summary(),
	}, nil
}

// Logout revokes the refresh token's identifier. Revoking an already-revoked
// identifier is not an error; presenting garbage is.
func (s *Identity) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.ErrTokenInvalid
	}

	// Entries only need to outlive the token itself.
	ttl := time.Until(claims.ExpiresAt)
	if err := s.sessions.Revoke(ctx, claims.RefreshID, ttl); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Info().Str("account_id", claims.AccountID).Str("refresh_id", claims.RefreshID).Msg("refresh token revoked")
	return nil
}

// Refresh exchanges a live refresh token for a new access token. The
// revocation check is mandatory: signature and expiry alone are not enough.
func (s *Identity) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.RefreshID)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	if revoked {
		return "", domain.ErrTokenRevoked
	}

	return s.codec.MintAccess(claims.AccountID, claims.Role)
}

// VerifyEmail consumes a verification token exactly once, transitioning the
// holding account from Unverified to Verified.
func (s *Identity) VerifyEmail(ctx context.Context, token string) error {
	cutoff := s.now().UTC().Add(-s.cfg.VerificationTokenTTL)
	account, err := s.accounts.ConsumeVerificationToken(ctx, token, cutoff)
	if err != nil {
		return err
	}

	s.log.Info().Str("account_id", account.ID).Msg("email verified")
	return nil
}

// ResendVerification mints a fresh verification token, invalidating any
// previously mailed link.
func (s *Identity) ResendVerification(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return domain.ErrAlreadyVerified
	}

	value, err := s.codec.MintSingleUse()
	if err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}

	token := domain.SingleUseToken{
		Value:     value,
		Kind:      domain.TokenKindVerification,
		CreatedAt: s.now().UTC(),
	}
	if err := s.accounts.SetToken(ctx, account.ID, token); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}

	s.sendVerificationMail(account.Email, value)
	return nil
}

// RequestPasswordReset mints a reset token for an active account and mails a
// reset link. A prior reset token is discarded; an outstanding verification
// token is untouched. Reports ErrAccountNotFound for unknown emails, matching
// the product's documented behavior.
func (s *Identity) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if !account.Active {
		return domain.ErrAccountDeactivated
	}

	value, err := s.codec.MintSingleUse()
	if err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}

	token := domain.SingleUseToken{
		Value:     value,
		Kind:      domain.TokenKindReset,
		CreatedAt: s.now().UTC(),
	}
	if err := s.accounts.SetToken(ctx, account.ID, token); err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}

	s.sendMail(account.Email, "Password Reset - HireIQ",
		fmt.Sprintf("Click the following link to reset your password: %s/reset-password/%s", s.cfg.FrontendBaseURL, value))

	s.log.Info().Str("account_id", account.ID).Msg("password reset requested")
	return nil
}

// ConfirmPasswordReset consumes the reset token and installs the new password
// in one atomic step: under concurrent confirmations with the same token,
// exactly one caller wins.
func (s *Identity) ConfirmPasswordReset(ctx context.Context, token, newPassword, confirm string) error {
	if newPassword != confirm {
		return domain.ErrPasswordMismatch
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("confirm password reset: hash password: %w", err)
	}

	cutoff := s.now().UTC().Add(-s.cfg.ResetTokenTTL)
	account, err := s.accounts.ConsumeResetToken(ctx, token, cutoff, hash)
	if err != nil {
		return err
	}

	s.log.Info().Str("account_id", account.ID).Msg("password reset confirmed")
	return nil
}

// ChangePassword verifies the caller's current password before installing the
// new one. accountID comes from the authenticated context, never the payload.
func (s *Identity) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword, confirm string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(oldPassword, account.PasswordHash) {
		return domain.ErrWrongOldPassword
	}
	if newPassword != confirm {
		return domain.ErrPasswordMismatch
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("account_id", accountID).Msg("password changed")
	return nil
}

// Account returns the caller-facing view of an account.
func (s *Identity) Account(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	summary := account.Summary()
	return &summary, nil
}

// Profile returns the account's profile.
func (s *Identity) Profile(ctx context.Context, accountID string) (*domain.Profile, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &account.Profile, nil
}

// UpdateProfile applies a partial update to the role-shaped profile. Fields
// belonging to another role's variant fail with ErrForbidden.
func (s *Identity) UpdateProfile(ctx context.Context, accountID string, in ports.UpdateProfileInput) (*domain.Profile, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	profile := account.Profile
	if !profile.MatchesRole(account.Role) {
		profile = domain.NewProfile(account.Role)
	}

	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.Location != nil {
		profile.Location = *in.Location
	}

	hasCandidateFields := in.Skills != nil || in.ExperienceYears != nil || in.Education != nil
	hasRecruiterFields := in.CompanyName != nil || in.CompanyWebsite != nil || in.CompanyDescription != nil

	switch account.Role {
	case domain.RoleCandidate:
		if hasRecruiterFields {
			return nil, domain.ErrForbidden
		}
		if in.Skills != nil {
			profile.Candidate.Skills = *in.Skills
		}
		if in.ExperienceYears != nil {
			profile.Candidate.ExperienceYears = *in.ExperienceYears
		}
		if in.Education != nil {
			profile.Candidate.Education = *in.Education
		}
	case domain.RoleRecruiter:
		if hasCandidateFields {
			return nil, domain.ErrForbidden
		}
		if in.CompanyName != nil {
			profile.Recruiter.CompanyName = *in.CompanyName
		}
		if in.CompanyWebsite != nil {
			profile.Recruiter.CompanyWebsite = *in.CompanyWebsite
		}
		if in.CompanyDescription != nil {
			profile.Recruiter.CompanyDescription = *in.CompanyDescription
		}
	case domain.RoleAdmin:
		if hasCandidateFields || hasRecruiterFields {
			return nil, domain.ErrForbidden
		}
	}

	if err := s.accounts.UpdateProfile(ctx, accountID, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &profile, nil
}

// SetAccountActive flips the active flag. Owned by administrative callers;
// existing sessions are unaffected until their refresh tokens expire or are
// revoked.
func (s *Identity) SetAccountActive(ctx context.Context, accountID string, active bool) error {
	if err := s.accounts.SetActive(ctx, accountID, active); err != nil {
		return err
	}
	s.log.Info().Str("account_id", accountID).Bool("active", active).Msg("account active flag updated")
	return nil
}

func (s *Identity) sendVerificationMail(email, token string) {
	s.sendMail(email, "Verify your email - HireIQ",
		fmt.Sprintf("Click the following link to verify your email: %s/verify-email/%s", s.cfg.FrontendBaseURL, token))
}

// sendMail is fire-and-forget: delivery failure never fails the originating
// operation.
func (s *Identity) sendMail(to, subject, body string) {
	if err := s.notifier.Send(to, subject, body); err != nil {
		s.log.Warn().Err(err).Str("recipient", to).Msg("notification delivery failed")
	}
}
