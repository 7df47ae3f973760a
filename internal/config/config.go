package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port" env:"PORT"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver" env:"DB_DRIVER"` // mysql | postgres
		Host     string `yaml:"host" env:"DB_HOST"`
		Port     int    `yaml:"port" env:"DB_PORT"`
		User     string `yaml:"user" env:"DB_USER"`
		Password string `yaml:"password" env:"DB_PASSWORD"`
		Name     string `yaml:"name" env:"DB_NAME"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
		AccessKey  string `yaml:"accessKey" env:"MINIO_ACCESS_KEY"`
		SecretKey  string `yaml:"secretKey" env:"MINIO_SECRET_KEY"`
		BucketName string `yaml:"bucketName" env:"MINIO_BUCKET"`
		Region     string `yaml:"region" env:"MINIO_REGION"`
		UseSSL     bool   `yaml:"useSSL" env:"MINIO_USE_SSL"`
	} `yaml:"minio"`

	AI struct {
		APIKey       string        `yaml:"apiKey" env:"AI_API_KEY"`
		BaseURL      string        `yaml:"baseURL" env:"AI_BASE_URL"`
		Model        string        `yaml:"model" env:"AI_MODEL"`
		Timeout      time.Duration `yaml:"timeout" env:"AI_TIMEOUT"`
		CacheTTL     time.Duration `yaml:"cacheTTL" env:"AI_CACHE_TTL"`
		CacheMaxSize int           `yaml:"cacheMaxSize" env:"AI_CACHE_MAX_SIZE"`
		DailyLimit   int           `yaml:"dailyLimit" env:"AI_DAILY_LIMIT"`
		MonthlyLimit int           `yaml:"monthlyLimit" env:"AI_MONTHLY_LIMIT"`
	} `yaml:"ai"`

	Notify struct {
		SlackWebhookURL string `yaml:"slackWebhookURL" env:"SLACK_WEBHOOK_URL"`
	} `yaml:"notify"`

	Auth struct {
		// tenant -> API key; empty map disables authentication
		APIKeys map[string]string `yaml:"apiKeys" env:"API_KEYS"`
	} `yaml:"auth"`
}

// Load reads config.yaml (optional), then applies environment overrides,
// then fills documented defaults.
func Load(ctx context.Context, path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, err
	}

	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.AI.CacheTTL == 0 {
		c.AI.CacheTTL = 24 * time.Hour
	}
	if c.AI.CacheMaxSize == 0 {
		c.AI.CacheMaxSize = 1000
	}
	if c.AI.DailyLimit == 0 {
		c.AI.DailyLimit = 50
	}
	if c.AI.MonthlyLimit == 0 {
		c.AI.MonthlyLimit = 1000
	}
}

// MySQLDSN builds the MySQL connection string
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the lib/pq connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
