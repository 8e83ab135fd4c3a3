package config

import (
	"os"
	"sync"
	"time"
)

type AdminConfig struct {
	Username string
	// bcrypt hash; takes precedence over Password when set
	PasswordHash string
	Password     string
	JWTSecret    string
	TokenTTL     time.Duration
}

var (
	adminConfig *AdminConfig
	adminOnce   sync.Once
)

func LoadAdminConfig() *AdminConfig {
	adminOnce.Do(func() {
		adminConfig = &AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			Password:     os.Getenv("ADMIN_PASSWORD"),
			JWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
			TokenTTL:     getEnvDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
		}
	})
	return adminConfig
}
