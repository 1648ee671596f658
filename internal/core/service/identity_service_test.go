package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hireiq/identity-service/internal/core/domain"
	"github.com/hireiq/identity-service/internal/core/ports"
)

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	nextID   int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.VerificationToken != nil {
		tok := *a.VerificationToken
		clone.VerificationToken = &tok
	}
	if a.ResetToken != nil {
		tok := *a.ResetToken
		clone.ResetToken = &tok
	}
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	copy := cloneAccount(account)
	if copy.ID == "" {
		r.nextID++
		copy.ID = fmt.Sprintf("acc-%d", r.nextID)
	}
	r.accounts[copy.ID] = cloneAccount(copy)
	return cloneAccount(copy), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) SetToken(_ context.Context, accountID string, token domain.SingleUseToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	tok := token
	switch token.Kind {
	case domain.TokenKindVerification:
		a.VerificationToken = &tok
	case domain.TokenKindReset:
		a.ResetToken = &tok
	}
	return nil
}

func (r *stubAccountRepo) ConsumeVerificationToken(_ context.Context, value string, cutoff time.Time) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.VerificationToken == nil || a.VerificationToken.Value != value {
			continue
		}
		if a.EmailVerified {
			return nil, domain.ErrAlreadyVerified
		}
		if a.VerificationToken.CreatedAt.Before(cutoff) {
			return nil, domain.ErrTokenInvalid
		}
		a.EmailVerified = true
		a.VerificationToken = nil
		return cloneAccount(a), nil
	}
	return nil, domain.ErrTokenInvalid
}

func (r *stubAccountRepo) ConsumeResetToken(_ context.Context, value string, cutoff time.Time, newHash []byte) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ResetToken == nil || a.ResetToken.Value != value {
			continue
		}
		if !a.Active || a.ResetToken.CreatedAt.Before(cutoff) {
			return nil, domain.ErrTokenInvalid
		}
		a.PasswordHash = newHash
		a.ResetToken = nil
		return cloneAccount(a), nil
	}
	return nil, domain.ErrTokenInvalid
}

func (r *stubAccountRepo) UpdatePassword(_ context.Context, accountID string, newHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = newHash
	return nil
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, accountID string, profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Profile = profile
	return nil
}

func (r *stubAccountRepo) SetActive(_ context.Context, accountID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Active = active
	return nil
}

type stubSessions struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newStubSessions() *stubSessions {
	return &stubSessions{revoked: make(map[string]bool)}
}

func (s *stubSessions) Revoke(_ context.Context, refreshID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[refreshID] = true
	return nil
}

func (s *stubSessions) IsRevoked(_ context.Context, refreshID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[refreshID], nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *captureNotifier) Send(to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (n *captureNotifier) last(t *testing.T) sentMail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatalf("expected at least one mail, got none")
	}
	return n.sent[len(n.sent)-1]
}

// lastLink extracts the token from the last path segment of the link embedded
// in the most recent mail.
func (n *captureNotifier) lastLink(t *testing.T) string {
	t.Helper()
	body := n.last(t).Body
	idx := strings.LastIndex(body, "/")
	if idx < 0 {
		t.Fatalf("no link in mail body: %q", body)
	}
	return body[idx+1:]
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) ([]byte, error) { return []byte("hash:" + plain), nil }

func (plainHasher) Verify(plain string, hash []byte) bool { return string(hash) == "hash:"+plain }

func newTestIdentity() (*Identity, *stubAccountRepo, *stubSessions, *captureNotifier) {
	repo := newStubAccountRepo()
	sessions := newStubSessions()
	notifier := &captureNotifier{}
	codec := NewTokenCodec("test-secret", time.Minute, time.Hour)
	svc := NewIdentity(repo, sessions, codec, plainHasher{}, notifier, IdentityConfig{}, zerolog.Nop())
	return svc, repo, sessions, notifier
}

func registerCandidate(t *testing.T, svc *Identity, email string) *domain.AccountSummary {
	t.Helper()
	summary, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:           email,
		Password:        "goodpass1",
		PasswordConfirm: "goodpass1",
		FirstName:       "Test",
		LastName:        "User",
		Role:            domain.RoleCandidate,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return summary
}

func TestIdentity_Register_Success(t *testing.T) {
	svc, repo, _, notifier := newTestIdentity()

	summary := registerCandidate(t, svc, "Alice@Example.com")
	if summary.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", summary.Email)
	}
	if summary.EmailVerified {
		t.Fatalf("new account must start unverified")
	}
	if !summary.Active {
		t.Fatalf("new account must start active")
	}

	stored, err := repo.FindByID(context.Background(), summary.ID)
	if err != nil {
		t.Fatalf("stored account not found: %v", err)
	}
	if string(stored.PasswordHash) == "goodpass1" {
		t.Fatalf("expected password to be hashed")
	}
	if stored.VerificationToken == nil {
		t.Fatalf("expected a pending verification token")
	}

	mail := notifier.last(t)
	if mail.To != "alice@example.com" {
		t.Fatalf("verification mail sent to %q", mail.To)
	}
	if !strings.Contains(mail.Body, stored.VerificationToken.Value) {
		t.Fatalf("mail body does not carry the verification token")
	}
}

func TestIdentity_Register_Validation(t *testing.T) {
	svc, _, _, _ := newTestIdentity()
	ctx := context.Background()

	base := ports.RegisterInput{
		Email:           "bob@example.com",
		Password:        "goodpass1",
		PasswordConfirm: "goodpass1",
		Role:            domain.RoleCandidate,
	}

	in := base
	in.Role = "superuser"
	if _, err := svc.Register(ctx, in); err != domain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	in = base
	in.PasswordConfirm = "different1"
	if _, err := svc.Register(ctx, in); err != domain.ErrPasswordMismatch {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	in = base
	in.Password, in.PasswordConfirm = "short1", "short1"
	if _, err := svc.Register(ctx, in); err != domain.ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword for short password, got %v", err)
	}

	in = base
	in.Password, in.PasswordConfirm = "12345678", "12345678"
	if _, err := svc.Register(ctx, in); err != domain.ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword for all-digit password, got %v", err)
	}
}

func TestIdentity_Register_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestIdentity()

	registerCandidate(t, svc, "carol@example.com")

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:           "CAROL@example.com",
		Password:        "otherpass1",
		PasswordConfirm: "otherpass1",
		Role:            domain.RoleRecruiter,
	})
	if err != domain.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestIdentity_Login_Success(t *testing.T) {
	svc, _, _, _ := newTestIdentity()
	summary := registerCandidate(t, svc, "dave@example.com")

	result, err := svc.Login(context.Background(), "Dave@Example.com", "goodpass1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected both session tokens, got %+v", result)
	}
	if result.Account.ID != summary.ID {
		t.Fatalf("unexpected account in login result: %+v", result.Account)
	}
}

func TestIdentity_Login_Failures(t *testing.T) {
	svc, _, _, _ := newTestIdentity()
	summary := registerCandidate(t, svc, "erin@example.com")
	ctx := context.Background()

	if _, err := svc.Login(ctx, "erin@example.com", "wrongpass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	// Unknown email must be indistinguishable from a wrong password.
	if _, err := svc.Login(ctx, "ghost@example.com", "goodpass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	if err := svc.SetAccountActive(ctx, summary.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, err := svc.Login(ctx, "erin@example.com", "goodpass1"); err != domain.ErrAccountDeactivated {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}

func TestIdentity_VerifyEmail_ConsumedExactlyOnce(t *testing.T) {
	svc, repo, _, notifier := newTestIdentity()
	summary := registerCandidate(t, svc, "frank@example.com")
	ctx := context.Background()

	token := notifier.lastLink(t)
	if err := svc.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	stored, _ := repo.FindByID(ctx, summary.ID)
	if !stored.EmailVerified {
		t.Fatalf("account not marked verified")
	}
	if stored.VerificationToken != nil {
		t.Fatalf("verification token not cleared after consumption")
	}

	// Replaying the consumed token must fail.
	if err := svc.VerifyEmail(ctx, token); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid on replay, got %v", err)
	}
}

func TestIdentity_VerifyEmail_Expired(t *testing.T) {
	svc, _, _, notifier := newTestIdentity()
	registerCandidate(t, svc, "grace@example.com")

	token := notifier.lastLink(t)
	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	if err := svc.VerifyEmail(context.Background(), token); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for stale token, got %v", err)
	}
}

func TestIdentity_ResendVerification_InvalidatesPrevious(t *testing.T) {
	svc, _, _, notifier := newTestIdentity()
	registerCandidate(t, svc, "heidi@example.com")
	ctx := context.Background()

	first := notifier.lastLink(t)
	if err := svc.ResendVerification(ctx, "heidi@example.com"); err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	second := notifier.lastLink(t)
	if first == second {
		t.Fatalf("resend must mint a fresh token")
	}

	if err := svc.VerifyEmail(ctx, first); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for superseded token, got %v", err)
	}
	if err := svc.VerifyEmail(ctx, second); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	if err := svc.ResendVerification(ctx, "heidi@example.com"); err != domain.ErrAlreadyVerified {
		t.Fatalf("expected ErrAlreadyVerified after verification, got %v", err)
	}
}

func TestIdentity_RefreshAndLogout(t *testing.T) {
	svc, _, _, _ := newTestIdentity()
	registerCandidate(t, svc, "ivan@example.com")
	ctx := context.Background()

	result, err := svc.Login(ctx, "ivan@example.com", "goodpass1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	access, err := svc.Refresh(ctx, result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if access == "" {
		t.Fatalf("expected a new access token")
	}

	// The access token is not a refresh token.
	if _, err := svc.Refresh(ctx, result.AccessToken); err != domain.ErrSignatureInvalid {
		t.Fatalf("expected ErrSignatureInvalid for access token, got %v", err)
	}

	if err := svc.Logout(ctx, result.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	// Logout is idempotent.
	if err := svc.Logout(ctx, result.RefreshToken); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}

	if _, err := svc.Refresh(ctx, result.RefreshToken); err != domain.ErrTokenRevoked {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}

	if err := svc.Logout(ctx, "not-a-token"); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for garbage refresh token, got %v", err)
	}
}

func TestIdentity_PasswordReset_Flow(t *testing.T) {
	svc, _, _, notifier := newTestIdentity()
	registerCandidate(t, svc, "judy@example.com")
	ctx := context.Background()

	if err := svc.RequestPasswordReset(ctx, "ghost@example.com"); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound for unknown email, got %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "judy@example.com"); err != nil {
		t.Fatalf("reset request failed: %v", err)
	}
	token := notifier.lastLink(t)

	if err := svc.ConfirmPasswordReset(ctx, token, "newpass12", "otherpass12"); err != domain.ErrPasswordMismatch {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := svc.ConfirmPasswordReset(ctx, token, "12345678", "12345678"); err != domain.ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if err := svc.ConfirmPasswordReset(ctx, token, "newpass12", "newpass12"); err != nil {
		t.Fatalf("reset confirmation failed: %v", err)
	}

	// Consumed token cannot be replayed.
	if err := svc.ConfirmPasswordReset(ctx, token, "thirdpass1", "thirdpass1"); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid on replay, got %v", err)
	}

	if _, err := svc.Login(ctx, "judy@example.com", "goodpass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password still accepted after reset")
	}
	if _, err := svc.Login(ctx, "judy@example.com", "newpass12"); err != nil {
		t.Fatalf("new password rejected after reset: %v", err)
	}
}

func TestIdentity_ConfirmPasswordReset_SingleWinner(t *testing.T) {
	svc, _, _, notifier := newTestIdentity()
	registerCandidate(t, svc, "kate@example.com")
	ctx := context.Background()

	if err := svc.RequestPasswordReset(ctx, "kate@example.com"); err != nil {
		t.Fatalf("reset request failed: %v", err)
	}
	token := notifier.lastLink(t)

	const callers = 16
	errs := make([]error, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.ConfirmPasswordReset(ctx, token, "newpass12", "newpass12")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch err {
		case nil:
			winners++
		case domain.ErrTokenInvalid:
		default:
			t.Fatalf("caller %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestIdentity_ChangePassword(t *testing.T) {
	svc, _, _, _ := newTestIdentity()
	summary := registerCandidate(t, svc, "liam@example.com")
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, summary.ID, "wrongpass1", "newpass12", "newpass12"); err != domain.ErrWrongOldPassword {
		t.Fatalf("expected ErrWrongOldPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, summary.ID, "goodpass1", "newpass12", "mismatch12"); err != domain.ErrPasswordMismatch {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := svc.ChangePassword(ctx, summary.ID, "goodpass1", "newpass12", "newpass12"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := svc.Login(ctx, "liam@example.com", "goodpass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password still accepted after change")
	}
	if _, err := svc.Login(ctx, "liam@example.com", "newpass12"); err != nil {
		t.Fatalf("new password rejected after change: %v", err)
	}
}

func TestIdentity_UpdateProfile_RoleShape(t *testing.T) {
	svc, _, _, _ := newTestIdentity()
	summary := registerCandidate(t, svc, "mary@example.com")
	ctx := context.Background()

	skills := []string{"go", "sql"}
	years := 4
	profile, err := svc.UpdateProfile(ctx, summary.ID, ports.UpdateProfileInput{
		Skills:          &skills,
		ExperienceYears: &years,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if profile.Candidate == nil || len(profile.Candidate.Skills) != 2 || profile.Candidate.ExperienceYears != 4 {
		t.Fatalf("candidate fields not applied: %+v", profile)
	}

	company := "Acme"
	if _, err := svc.UpdateProfile(ctx, summary.ID, ports.UpdateProfileInput{CompanyName: &company}); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for recruiter fields on a candidate, got %v", err)
	}

	// Partial update leaves untouched fields intact.
	bio := "backend engineer"
	profile, err = svc.UpdateProfile(ctx, summary.ID, ports.UpdateProfileInput{Bio: &bio})
	if err != nil {
		t.Fatalf("partial update failed: %v", err)
	}
	if profile.Bio != "backend engineer" || len(profile.Candidate.Skills) != 2 {
		t.Fatalf("partial update clobbered existing fields: %+v", profile)
	}
}
