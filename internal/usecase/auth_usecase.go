package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fadilmartias/hireprep/internal/config"
	"github.com/fadilmartias/hireprep/internal/dto"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "hireprep-admin"

var errInvalidCredentials = util.NewUnauthorizedError("invalid username or password")

// AuthUsecase checks the single admin account and issues HS256 bearer tokens for it.
type AuthUsecase struct {
	username     string
	passwordHash []byte
	password     string
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAuthUsecase(cfg *config.AdminConfig) *AuthUsecase {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("generate admin token secret: %v", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		log.Println("Warning: ADMIN_JWT_SECRET not set, admin tokens will not survive a restart")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if cfg.PasswordHash == "" && cfg.Password == "" {
		log.Println("Warning: no admin password configured, admin login is disabled")
	}
	return &AuthUsecase{
		username:     cfg.Username,
		passwordHash: []byte(cfg.PasswordHash),
		password:     cfg.Password,
		secret:       secret,
		ttl:          ttl,
		now:          time.Now,
	}
}

func (uc *AuthUsecase) Login(_ context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, util.ValidationErrorFrom(err)
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(uc.username)) == 1
	passOK := uc.checkPassword(req.Password)
	if !userOK || !passOK {
		return nil, errInvalidCredentials
	}

	now := uc.now()
	expiresAt := now.Add(uc.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   uc.username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return nil, util.NewUpstreamError("failed to issue token", err)
	}
	return &dto.LoginResponse{Token: signed, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

func (uc *AuthUsecase) checkPassword(password string) bool {
	if len(uc.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(uc.passwordHash, []byte(password)) == nil
	}
	if uc.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(uc.password)) == 1
}

// VerifyToken returns the subject of a valid admin token.
func (uc *AuthUsecase) VerifyToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return uc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(uc.now),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return "", errors.New("token is not valid")
	}
	if claims.Subject != uc.username {
		return "", fmt.Errorf("unknown subject %q", claims.Subject)
	}
	return claims.Subject, nil
}
