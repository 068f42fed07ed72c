package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreBackendBolt  = "bolt"
	StoreBackendRedis = "redis"
)

type Config struct {
	AppPort      int    `mapstructure:"APP_PORT"`
	StoreBackend string `mapstructure:"STORE_BACKEND"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	GeminiAPIURL string `mapstructure:"GEMINI_API_URL"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("STORE_BACKEND", StoreBackendBolt)
	viper.SetDefault("DATABASE_PATH", "/data/pocketchat.db")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
