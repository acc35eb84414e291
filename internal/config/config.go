package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Exchange ExchangeConfig
	Bot      BotConfig
	Server   ServerConfig
	Database DatabaseConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ExchangeConfig - настройки подключения к Bitunix
type ExchangeConfig struct {
	APIKey       string
	APISecret    string // секрет в открытом виде; пуст, если задан APISecretEnc
	APISecretEnc string // секрет, зашифрованный AES-256-GCM (hex)
	BaseURL      string

	// Лимит исходящих запросов
	RateLimit float64 // запросов в секунду
	RateBurst int     // размер всплеска (0 = 2×RateLimit)
}

// BotConfig - настройки цикла сопровождения
type BotConfig struct {
	PollInterval     time.Duration // пауза между тиками WATCHING
	RetryDelay       time.Duration // пауза после неположительного стопа
	PromptRetryDelay time.Duration // пауза после невалидного ввода
}

// ServerConfig - настройки HTTP сервера статуса (опционален)
type ServerConfig struct {
	Enabled bool
	Host    string
	Port    int
}

// DatabaseConfig - настройки журнала событий в PostgreSQL (опционален)
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SecurityConfig - настройки расшифровки секрета API
type SecurityConfig struct {
	// Парольная фраза для вывода ключа AES-256 (PBKDF2).
	// Обязательна только когда задан BITUNIX_API_SECRET_ENC.
	Passphrase string
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из .env файла и переменных окружения.
// Переменные окружения имеют приоритет над .env.
func Load() (*Config, error) {
	// .env опционален: в проде переменные задаются окружением
	_ = godotenv.Load()

	cfg := &Config{
		Exchange: ExchangeConfig{
			APIKey:       getEnv("BITUNIX_API_KEY", ""),
			APISecret:    getEnv("BITUNIX_API_SECRET", ""),
			APISecretEnc: getEnv("BITUNIX_API_SECRET_ENC", ""),
			BaseURL:      getEnv("BITUNIX_BASE_URL", "https://fapi.bitunix.com"),
			RateLimit:    getEnvAsFloat("EXCHANGE_RATE_LIMIT", 10),
			RateBurst:    getEnvAsInt("EXCHANGE_RATE_BURST", 0),
		},
		Bot: BotConfig{
			PollInterval:     getEnvAsDuration("POLL_INTERVAL", 3*time.Second),
			RetryDelay:       getEnvAsDuration("RETRY_DELAY", 2*time.Second),
			PromptRetryDelay: getEnvAsDuration("PROMPT_RETRY_DELAY", 1*time.Second),
		},
		Server: ServerConfig{
			Enabled: getEnvAsBool("SERVER_ENABLED", false),
			Host:    getEnv("SERVER_HOST", "127.0.0.1"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "stopguard"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Security: SecurityConfig{
			Passphrase: getEnv("SECRET_PASSPHRASE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.validateCredentials(); err != nil {
		return nil, err
	}
	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateCredentials проверяет учётные данные биржи
func (c *Config) validateCredentials() error {
	if c.Exchange.APIKey == "" {
		return fmt.Errorf("BITUNIX_API_KEY is required")
	}

	if c.Exchange.APISecret == "" && c.Exchange.APISecretEnc == "" {
		return fmt.Errorf("either BITUNIX_API_SECRET or BITUNIX_API_SECRET_ENC is required")
	}

	if c.Exchange.APISecret != "" && c.Exchange.APISecretEnc != "" {
		return fmt.Errorf("BITUNIX_API_SECRET and BITUNIX_API_SECRET_ENC are mutually exclusive")
	}

	// Зашифрованный секрет требует парольную фразу для расшифровки
	if c.Exchange.APISecretEnc != "" && c.Security.Passphrase == "" {
		return fmt.Errorf("SECRET_PASSPHRASE is required when BITUNIX_API_SECRET_ENC is set")
	}

	return nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	if c.Server.Enabled {
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
		}
	}

	if c.Database.Enabled {
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
		}
	}

	if c.Bot.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %v", c.Bot.PollInterval)
	}

	if c.Bot.RetryDelay <= 0 {
		return fmt.Errorf("RETRY_DELAY must be positive, got %v", c.Bot.RetryDelay)
	}

	if c.Exchange.RateLimit <= 0 {
		return fmt.Errorf("EXCHANGE_RATE_LIMIT must be positive, got %v", c.Exchange.RateLimit)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
