package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fadilmartias/hireprep/internal/config"
	"github.com/fadilmartias/hireprep/internal/dto"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T, cfg config.AdminConfig) *AuthUsecase {
	t.Helper()
	if cfg.Username == "" {
		cfg.Username = "admin"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	cfg.TokenTTL = time.Hour
	return NewAuthUsecase(&cfg)
}

func TestAuth_LoginWithPlainPassword(t *testing.T) {
	uc := newAuth(t, config.AdminConfig{Password: "s3cret"})

	res, err := uc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, 5*time.Second)

	subject, err := uc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestAuth_LoginWithBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	// the hash wins over the plain password
	uc := newAuth(t, config.AdminConfig{PasswordHash: string(hash), Password: "plain"})

	_, err = uc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "hashed-pass"})
	assert.NoError(t, err)

	_, err = uc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "plain"})
	requireKind(t, err, util.KindUnauthorized)
}

func TestAuth_RejectsBadCredentials(t *testing.T) {
	uc := newAuth(t, config.AdminConfig{Password: "s3cret"})

	_, err := uc.Login(context.Background(), &dto.LoginRequest{Username: "root", Password: "s3cret"})
	requireKind(t, err, util.KindUnauthorized)
	_, err = uc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "wrong"})
	requireKind(t, err, util.KindUnauthorized)
	_, err = uc.Login(context.Background(), &dto.LoginRequest{Username: "admin"})
	requireKind(t, err, util.KindValidation)

	disabled := newAuth(t, config.AdminConfig{})
	_, err = disabled.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "anything"})
	requireKind(t, err, util.KindUnauthorized)
}

func TestAuth_VerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	uc := newAuth(t, config.AdminConfig{Password: "s3cret"})
	other := newAuth(t, config.AdminConfig{Password: "s3cret", JWTSecret: "other-secret"})

	res, err := other.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	_, err = uc.VerifyToken(res.Token)
	assert.Error(t, err)

	res, err = uc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	uc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = uc.VerifyToken(res.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = uc.VerifyToken("not.a.token")
	assert.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: tokenIssuer, Subject: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = uc.VerifyToken(none)
	assert.Error(t, err)
}
