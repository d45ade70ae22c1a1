package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	PublicURL    string
	LogLevel     slog.Level

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// R2 - опционально, без него загрузка аватаров выключена.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	// SMTP - опционально, без него приглашения по почте выключены.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// SMTPEnabled сообщает, хватает ли настроек SMTP для отправки почты.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию из любой функции поиска переменных.
func FromEnv(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intVar(getenv, "SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	rps := 20.0
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err = strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q", v)
		}
	}
	burst, err := intVar(getenv, "RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}
	if burst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", burst)
	}

	smtpPort, err := intVar(getenv, "SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	publicURL := strings.TrimRight(getenv("PUBLIC_URL"), "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%d", port)
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		PublicURL:          publicURL,
		LogLevel:           level,
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS"), []string{"*"}),
		RateLimitRPS:       rps,
		RateLimitBurst:     burst,
		R2AccountID:        getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    getenv("R2_PUBLIC_BASE_URL"),
		SMTPHost:           getenv("SMTP_HOST"),
		SMTPPort:           smtpPort,
		SMTPUser:           getenv("SMTP_USER"),
		SMTPPass:           getenv("SMTP_PASS"),
		SMTPFrom:           getenv("SMTP_FROM"),
	}

	return cfg, nil
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func splitList(v string, def []string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
