package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Generator GeneratorConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BackendConfig points at the external study-aid backend that stores notes,
// generates quizzes and persists scores.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LoggerConfig struct {
	Env   string
	Level string
}

// GeneratorConfig selects where raw quiz payloads come from:
// "backend" uses the remote HTTP service, "ollama" generates locally.
type GeneratorConfig struct {
	Source          string
	OllamaServerURL string
	OllamaModel     string
}

type CacheConfig struct {
	NotesTTL   time.Duration
	HistoryTTL time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.SetDefault("server.port", 4000)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("backend.timeout", 30)
	viper.SetDefault("generator.source", "backend")
	viper.SetDefault("cache.notes_ttl", 300)
	viper.SetDefault("cache.history_ttl", 60)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: viper.GetString("backend.base_url"),
			Timeout: viper.GetDuration("backend.timeout") * time.Second,
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Env:   viper.GetString("logger.env"),
			Level: viper.GetString("logger.level"),
		},
		Generator: GeneratorConfig{
			Source:          viper.GetString("generator.source"),
			OllamaServerURL: viper.GetString("generator.ollama_server_url"),
			OllamaModel:     viper.GetString("generator.ollama_model"),
		},
		Cache: CacheConfig{
			NotesTTL:   viper.GetDuration("cache.notes_ttl") * time.Second,
			HistoryTTL: viper.GetDuration("cache.history_ttl") * time.Second,
		},
	}

	// Override with environment variables if set
	if backendURL := os.Getenv("BACKEND_URL"); backendURL != "" {
		config.Backend.BaseURL = backendURL
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if generatorSource := os.Getenv("GENERATOR_SOURCE"); generatorSource != "" {
		config.Generator.Source = generatorSource
	}
	if ollamaURL := os.Getenv("OLLAMA_SERVER_URL"); ollamaURL != "" {
		config.Generator.OllamaServerURL = ollamaURL
	}

	return config, nil
}
