package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=erp port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	CORSOrigins string

	DatabaseDriver string // postgres, mysql, sqlite
	DatabaseDSN    string

	JWTSecret    string
	SessionTTL   time.Duration
	SessionStore string // memory, redis

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Bootstrap admin girişi. Şifre boşsa kapalıdır.
	BootstrapAdminEmail    string
	BootstrapAdminUsername string
	BootstrapAdminPassword string

	Log LogConfig
	SMTP SMTPConfig

	LowStockThreshold int
	CountConcurrency  int
}

type LogConfig struct {
	Level    string
	Format   string // json, console
	Output   string // stdout, file
	FilePath string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether outgoing mail is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// BootstrapEnabled reports whether the configured admin credential may log in.
func (c *Config) BootstrapEnabled() bool {
	return c.BootstrapAdminPassword != "" &&
		(c.BootstrapAdminEmail != "" || c.BootstrapAdminUsername != "")
}

func Load() *Config {
	// .env yoksa sorun değil, production ortam değişkenleri kullanılır
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] .env okunamadı: %v", err)
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),
		SessionStore:   strings.ToLower(getEnv("SESSION_STORE", "memory")),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getInt("REDIS_DB", 0),

		BootstrapAdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", "admin@example.com"),
		BootstrapAdminUsername: getEnv("BOOTSTRAP_ADMIN_USERNAME", "admin"),
		BootstrapAdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),

		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "json"),
			Output:   getEnv("LOG_OUTPUT", "stdout"),
			FilePath: getEnv("LOG_FILE", "./logs/erp.log"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", ""),
		},

		LowStockThreshold: getInt("LOW_STOCK_THRESHOLD", 30),
		CountConcurrency:  getInt("COUNT_CONCURRENCY", 8),
	}

	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor, production için kendi bağlantı bilgini tanımla.")
	}
	if cfg.BootstrapEnabled() {
		log.Println("[WARN] BOOTSTRAP_ADMIN_PASSWORD tanımlı, bootstrap admin girişi açık.")
	}

	return cfg
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET tanımlanmamış")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET en az 32 karakter olmalıdır")
	}
	switch c.DatabaseDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("bilinmeyen DATABASE_DRIVER: %s", c.DatabaseDriver)
	}
	switch c.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("bilinmeyen SESSION_STORE: %s", c.SessionStore)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL pozitif olmalıdır")
	}
	if c.CountConcurrency < 1 {
		c.CountConcurrency = 1
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s sayı değil (%q), varsayılan %d kullanılıyor", key, v, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s süre değil (%q), varsayılan %s kullanılıyor", key, v, def)
		return def
	}
	return d
}
