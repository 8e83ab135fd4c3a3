package config

import (
	"os"
	"sync"
)

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

var (
	rabbitMQConfig *RabbitMQConfig
	rabbitMQOnce   sync.Once
)

func LoadRabbitMQConfig() *RabbitMQConfig {
	rabbitMQOnce.Do(func() {
		rabbitMQConfig = &RabbitMQConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "session_updates"),
		}
	})
	return rabbitMQConfig
}
