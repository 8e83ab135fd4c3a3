package config

import "sync"

type AIConfig struct {
	// "gemini" or "openrouter"; the other configured provider becomes the fallback
	Provider          string
	RequestsPerSecond float64
}

var (
	aiConfig *AIConfig
	aiOnce   sync.Once
)

func LoadAIConfig() *AIConfig {
	aiOnce.Do(func() {
		aiConfig = &AIConfig{
			Provider:          getEnv("AI_PROVIDER", "gemini"),
			RequestsPerSecond: getEnvFloat("AI_REQUESTS_PER_SECOND", 2),
		}
	})
	return aiConfig
}
