package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DBDriver    string
	DatabaseURL string

	JWTSecret []byte
	TokenTTL  time.Duration

	UploadDir    string
	UploadPrefix string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("notice: .env file not loaded: %v. Using system environment variables", err)
	}

	return &Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 5000),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(EnvDefault("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:  EnvDurationDefault("TOKEN_TTL", time.Hour),

		UploadDir:    EnvDefault("UPLOAD_DIR", "uploads"),
		UploadPrefix: EnvDefault("UPLOAD_URL_PREFIX", "/uploads"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     EnvIntDefault("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     EnvDefault("MAIL_FROM", "no-reply@storefront.local"),
	}
}

// MustValidate stops the process when a required setting is missing.
func (c *Config) MustValidate() {
	MustNonEmptyBytes(c.JWTSecret, "JWT_SECRET")
	MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
