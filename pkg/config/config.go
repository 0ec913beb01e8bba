package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App                     string        `yaml:"app"`
	Port                    string        `yaml:"port"`
	Env                     string        `yaml:"env"`
	LogLevel                string        `yaml:"log_level"`
	LogFile                 string        `yaml:"log_file"`
	JWTSecret               string        `yaml:"jwt_secret"`
	JWTTTL                  time.Duration `yaml:"jwt_ttl"`
	MongoURI                string        `yaml:"mongo_uri"`
	MongoDB                 string        `yaml:"mongo_db"`
	SQLDSN                  string        `yaml:"sql_dsn"`
	RedisURL                string        `yaml:"redis_url"`
	FirebaseCredentialsPath string        `yaml:"firebase_credentials_path"`
	OllamaBaseURL           string        `yaml:"ollama_base_url"`
	OllamaModel             string        `yaml:"ollama_model"`
	FrontendURL             string        `yaml:"frontend_url"`
	PaymentWebhookSecret    string        `yaml:"payment_webhook_secret"`
	RateLimitPerMinute      int           `yaml:"rate_limit_per_minute"`
	Mail                    MailSettings  `yaml:"mail"`
}

type MailSettings struct {
	From         string `yaml:"from"`
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	AWSRegion    string `yaml:"aws_region"`
	AWSAccessKey string `yaml:"aws_access_key_id"`
	AWSSecretKey string `yaml:"aws_secret_access_key"`
}

const devJWTSecret = "supersecretjwtkey"

// defaultMongoDB maps each Mongo-backed app to its database name.
var defaultMongoDB = map[string]string{
	"mindspace":   "mindspace",
	"artisanmart": "artisanmart",
}

// Load reads .env (if any), the optional CONFIG_FILE yaml overlay, then
// environment variables, which win over the file.
func Load(app string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App:                app,
		Port:               "8080",
		Env:                "development",
		LogLevel:           "info",
		JWTSecret:          devJWTSecret,
		JWTTTL:             7 * 24 * time.Hour,
		MongoURI:           "mongodb://localhost:27017",
		MongoDB:            defaultMongoDB[app],
		SQLDSN:             "file:papers.db",
		OllamaBaseURL:      "http://localhost:11434",
		OllamaModel:        "gemma:2b",
		FrontendURL:        "http://localhost:3000",
		RateLimitPerMinute: 100,
		Mail:               MailSettings{From: "noreply@mindspace.app", SMTPPort: 587},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTTTL = getEnvDuration("JWT_TTL", c.JWTTTL)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDB = getEnv("MONGO_DB", c.MongoDB)
	c.SQLDSN = getEnv("SQL_DSN", c.SQLDSN)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.FirebaseCredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", c.FirebaseCredentialsPath)
	c.OllamaBaseURL = getEnv("OLLAMA_BASE_URL", c.OllamaBaseURL)
	c.OllamaModel = getEnv("OLLAMA_MODEL", c.OllamaModel)
	c.FrontendURL = getEnv("FRONTEND_URL", c.FrontendURL)
	c.PaymentWebhookSecret = getEnv("PAYMENT_WEBHOOK_SECRET", c.PaymentWebhookSecret)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)

	c.Mail.From = getEnv("MAIL_FROM", c.Mail.From)
	c.Mail.SMTPHost = getEnv("SMTP_HOST", c.Mail.SMTPHost)
	c.Mail.SMTPPort = getEnvInt("SMTP_PORT", c.Mail.SMTPPort)
	c.Mail.SMTPUser = getEnv("SMTP_USER", c.Mail.SMTPUser)
	c.Mail.SMTPPassword = getEnv("SMTP_PASS", c.Mail.SMTPPassword)
	c.Mail.AWSRegion = getEnv("AWS_REGION", c.Mail.AWSRegion)
	c.Mail.AWSAccessKey = getEnv("AWS_ACCESS_KEY_ID", c.Mail.AWSAccessKey)
	c.Mail.AWSSecretKey = getEnv("AWS_SECRET_ACCESS_KEY", c.Mail.AWSSecretKey)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Validate checks the settings the selected app needs before any connection is opened.
func (c *Config) Validate() error {
	switch c.App {
	case "mindspace", "artisanmart":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for %s", c.App)
		}
		if c.MongoDB == "" {
			return fmt.Errorf("MONGO_DB is required for %s", c.App)
		}
	case "papers":
		if c.SQLDSN == "" {
			return fmt.Errorf("SQL_DSN is required for papers")
		}
	default:
		return fmt.Errorf("unknown app %q", c.App)
	}

	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.App == "artisanmart" && c.IsProduction() && c.PaymentWebhookSecret == "" {
		return fmt.Errorf("PAYMENT_WEBHOOK_SECRET must be set in production")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
