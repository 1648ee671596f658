package domain

import (
	"testing"
	"time"
)

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleCandidate, RoleRecruiter, RoleAdmin} {
		if !role.Valid() {
			t.Fatalf("role %q should be valid", role)
		}
	}
	for _, role := range []Role{"", "superuser", "Candidate"} {
		if role.Valid() {
			t.Fatalf("role %q should be invalid", role)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		wantErr  error
	}{
		{"goodpass1", nil},
		{"short1", ErrWeakPassword},
		{"12345678", ErrWeakPassword},
		{"123456789012", ErrWeakPassword},
		{"1234567a", nil},
	}
	for _, tc := range cases {
		if err := ValidatePassword(tc.password); err != tc.wantErr {
			t.Fatalf("ValidatePassword(%q) = %v, want %v", tc.password, err, tc.wantErr)
		}
	}
}

func TestNewProfileMatchesRole(t *testing.T) {
	for _, role := range []Role{RoleCandidate, RoleRecruiter, RoleAdmin} {
		if !NewProfile(role).MatchesRole(role) {
			t.Fatalf("NewProfile(%q) does not match its role", role)
		}
	}
	if NewProfile(RoleCandidate).MatchesRole(RoleRecruiter) {
		t.Fatalf("candidate profile should not match recruiter role")
	}
}

func TestSingleUseTokenExpired(t *testing.T) {
	now := time.Now()
	token := SingleUseToken{Value: "v", Kind: TokenKindReset, CreatedAt: now.Add(-2 * time.Hour)}
	if !token.Expired(now, time.Hour) {
		t.Fatalf("token minted 2h ago should be expired with a 1h ttl")
	}
	if token.Expired(now, 3*time.Hour) {
		t.Fatalf("token minted 2h ago should be live with a 3h ttl")
	}
}

func TestAccountSummaryOmitsSecrets(t *testing.T) {
	account := Account{
		ID:           "acc-1",
		Email:        "a@example.com",
		Role:         RoleCandidate,
		PasswordHash: []byte("hash"),
		VerificationToken: &SingleUseToken{
			Value: "tok", Kind: TokenKindVerification, CreatedAt: time.Now(),
		},
		Active: true,
	}
	summary := account.Summary()
	if summary.ID != "acc-1" || summary.Email != "a@example.com" || !summary.Active {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
