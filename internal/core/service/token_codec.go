package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hireiq/identity-service/internal/core/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	// 32 bytes of CSPRNG output, 256 bits of entropy per single-use token.
	singleUseTokenBytes = 32
)

// TokenCodec mints and verifies HS256-signed session tokens and opaque
// single-use tokens. It performs no persistence.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenCodec returns a codec signing with secret. Non-positive TTLs fall
// back to 15 minutes (access) and 7 days (refresh).
func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// MintSingleUse produces an opaque URL-safe token from crypto/rand.
func (t *TokenCodec) MintSingleUse() (string, error) {
	b := make([]byte, singleUseTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("mint single-use token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MintSession produces a signed access/refresh pair. The refresh token
// carries a unique identifier (jti) for later revocation.
func (t *TokenCodec) MintSession(accountID string, role domain.Role) (string, string, string, error) {
	access, err := t.MintAccess(accountID, role)
	if err != nil {
		return "", "", "", err
	}

	refreshID := uuid.NewString()
	now := t.now()
	refresh, err := t.sign(jwt.MapClaims{
		"sub":  accountID,
		"role": string(role),
		"typ":  tokenTypeRefresh,
		"jti":  refreshID,
		"iat":  now.Unix(),
		"exp":  now.Add(t.refreshTTL).Unix(),
	})
	if err != nil {
		return "", "", "", err
	}

	return access, refresh, refreshID, nil
}

// MintAccess produces a signed access token only.
func (t *TokenCodec) MintAccess(accountID string, role domain.Role) (string, error) {
	now := t.now()
	return t.sign(jwt.MapClaims{
		"sub":  accountID,
		"role": string(role),
		"typ":  tokenTypeAccess,
		"iat":  now.Unix(),
		"exp":  now.Add(t.accessTTL).Unix(),
	})
}

// VerifyAccess validates an access token.
func (t *TokenCodec) VerifyAccess(token string) (*domain.SessionClaims, error) {
	return t.verify(token, tokenTypeAccess)
}

// VerifyRefresh validates a refresh token and returns its refresh identifier.
func (t *TokenCodec) VerifyRefresh(token string) (*domain.SessionClaims, error) {
	return t.verify(token, tokenTypeRefresh)
}

func (t *TokenCodec) sign(claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenCodec) verify(token, wantType string) (*domain.SessionClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tkn *jwt.Token) (interface{}, error) {
		if tkn.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrSignatureInvalid
	}
	if !parsed.Valid {
		return nil, domain.ErrSignatureInvalid
	}

	typ, _ := claims["typ"].(string)
	if typ != wantType {
		return nil, domain.ErrSignatureInvalid
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || !domain.Role(role).Valid() {
		return nil, domain.ErrSignatureInvalid
	}

	out := &domain.SessionClaims{
		AccountID: sub,
		Role:      domain.Role(role),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if wantType == tokenTypeRefresh {
		jti, _ := claims["jti"].(string)
		if jti == "" {
			return nil, domain.ErrSignatureInvalid
		}
		out.RefreshID = jti
	}
	return out, nil
}
