package config

import (
	"log"
	"os"
	"sync"
)

type FeatureFlags struct {
	Translation     bool
	CandidateFlow   bool
	InterviewerFlow bool
}

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string

	// requests per identifier per minute
	RateLimitPerMinute int
	MaxUploadSizeMB    int
	TrustProxy         bool
	// comma separated IPs or CIDRs of our own proxies, skipped in X-Forwarded-For
	TrustedProxies     string
	DefaultLanguage    string
	Features           FeatureFlags
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		appConfig = &AppConfig{
			Name:               getEnv("APP_NAME", "hireprep"),
			Env:                env,
			Port:               getEnv("APP_PORT", ":8080"),
			BaseURL:            os.Getenv("APP_URL"),
			RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
			MaxUploadSizeMB:    getEnvInt("MAX_UPLOAD_SIZE_MB", 5),
			TrustProxy:         getEnvBool("TRUST_PROXY", false),
			TrustedProxies:     os.Getenv("TRUSTED_PROXIES"),
			DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "en"),
			Features: FeatureFlags{
				Translation:     getEnvBool("FEATURE_TRANSLATION", false),
				CandidateFlow:   getEnvBool("FEATURE_CANDIDATE_FLOW", true),
				InterviewerFlow: getEnvBool("FEATURE_INTERVIEWER_FLOW", true),
			},
		}
	})
	return appConfig
}

func (c *AppConfig) MaxUploadSizeBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
