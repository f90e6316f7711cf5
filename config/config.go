package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		LogLevel string // silent, error, warn, info
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	Auth struct {
		Enabled      bool
		Username     string
		PasswordHash string // bcrypt-хеш пароля оператора
	}
	SMTP struct {
		Enabled  bool
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Kafka struct {
		Brokers []string
		Topic   string
	}
	RateLimit struct {
		Requests int
		Window   time.Duration
	}
	Log struct {
		Level  string
		Format string // text или json
		File   string
	}
	ReconcileInterval time.Duration // 0 отключает периодическую сверку
}

// defaults содержит значения по умолчанию для всех ключей
var defaults = map[string]interface{}{
	"SERVER_PORT":         8085,
	"DB_HOST":             "localhost",
	"DB_PORT":             5432,
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "postgres",
	"DB_NAME":             "ebanking_db",
	"DB_SSLMODE":          "disable",
	"DB_LOG_LEVEL":        "warn",
	"JWT_SECRET_KEY":      "your-secret-key-here",
	"JWT_EXPIRES_IN":      24,
	"AUTH_ENABLED":        false,
	"AUTH_USERNAME":       "admin",
	"AUTH_PASSWORD_HASH":  "",
	"SMTP_ENABLED":        false,
	"SMTP_HOST":           "smtp.gmail.com",
	"SMTP_PORT":           587,
	"SMTP_USERNAME":       "",
	"SMTP_PASSWORD":       "",
	"SMTP_FROM":           "no-reply@ebanking.local",
	"KAFKA_BROKERS":       "",
	"KAFKA_TOPIC":         "account_operations",
	"RATE_LIMIT_REQUESTS": 100,
	"RATE_LIMIT_WINDOW":   "1m",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "text",
	"LOG_FILE":            "",
	"RECONCILE_INTERVAL":  "1h",
}

// NewConfig создает новый экземпляр конфигурации из окружения
// и необязательного файла config.yaml в рабочей директории
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("invalid config file: %w", err)
		}
	}
	return Load(v)
}

// Load собирает конфигурацию из переданного экземпляра viper
func Load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}

	// Настройки сервера
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	// Настройки базы данных
	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	if cfg.DB.Port <= 0 {
		return nil, fmt.Errorf("invalid database port: %d", cfg.DB.Port)
	}
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")
	cfg.DB.SSLMode = v.GetString("DB_SSLMODE")
	cfg.DB.LogLevel = strings.ToLower(v.GetString("DB_LOG_LEVEL"))

	// Настройки JWT и доступа
	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")
	if cfg.JWT.ExpiresIn <= 0 {
		return nil, fmt.Errorf("invalid JWT lifetime: %d", cfg.JWT.ExpiresIn)
	}
	cfg.Auth.Enabled = v.GetBool("AUTH_ENABLED")
	cfg.Auth.Username = v.GetString("AUTH_USERNAME")
	cfg.Auth.PasswordHash = v.GetString("AUTH_PASSWORD_HASH")
	if cfg.Auth.Enabled && cfg.Auth.PasswordHash == "" {
		return nil, fmt.Errorf("AUTH_PASSWORD_HASH is required when AUTH_ENABLED is set")
	}

	// Настройки SMTP
	cfg.SMTP.Enabled = v.GetBool("SMTP_ENABLED")
	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	// Настройки Kafka
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.Kafka.Topic = v.GetString("KAFKA_TOPIC")

	// Ограничение частоты запросов
	cfg.RateLimit.Requests = v.GetInt("RATE_LIMIT_REQUESTS")
	cfg.RateLimit.Window = v.GetDuration("RATE_LIMIT_WINDOW")
	if cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("invalid rate limit: %d per %v", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	// Логирование
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")
	cfg.Log.File = v.GetString("LOG_FILE")

	cfg.ReconcileInterval = v.GetDuration("RECONCILE_INTERVAL")

	return cfg, nil
}

// DSN возвращает строку подключения для драйвера gorm
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}

// MigrationURL возвращает URL базы данных для golang-migrate
func (c *Config) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
