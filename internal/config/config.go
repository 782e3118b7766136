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
	App        AppConfig
	Database   DatabaseConfig
	SMTP       SMTPConfig
	Auth       AuthConfig
	Stripe     StripeConfig
	Generator  GeneratorConfig
	Onboarding OnboardingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

func (c AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

type DatabaseConfig struct {
	Connection string
	Debug      bool
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JWTSecret          string
	SessionCookieName  string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	UnitPriceCents int
	Currency       string
}

// GeneratorConfig describes the external workflow generator. The platform keys
// are used for generations paid with credits.
type GeneratorConfig struct {
	WebhookURL               string
	CallbackSecret           string
	PlatformMainProvider     string
	PlatformFallbackProvider string
	PlatformKeys             map[string]string
}

type OnboardingConfig struct {
	StateTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
			ClientURL:          strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Debug:      getEnvAsBool("DB_DEBUG", false),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Gen8n"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			SessionCookieName:  getEnv("SESSION_COOKIE_NAME", "sb-access-token"),
			TokenTTL:           time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Stripe: StripeConfig{
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
			UnitPriceCents: getEnvAsInt("CREDIT_PRICE_CENTS", 150),
			Currency:       getEnv("STRIPE_CURRENCY", "usd"),
		},
		Generator: GeneratorConfig{
			WebhookURL:               getEnv("N8N_GENERATOR_WEBHOOK_URL", ""),
			CallbackSecret:           getEnv("WORKFLOW_WEBHOOK_SECRET", ""),
			PlatformMainProvider:     getEnv("PLATFORM_MAIN_PROVIDER", "anthropic"),
			PlatformFallbackProvider: getEnv("PLATFORM_FALLBACK_PROVIDER", "openai"),
			PlatformKeys: nonEmpty(map[string]string{
				"anthropic":  getEnv("ANTHROPIC_API_KEY", ""),
				"openai":     getEnv("OPENAI_API_KEY", ""),
				"openrouter": getEnv("OPENROUTER_API_KEY", ""),
				"google":     getEnv("GOOGLE_API_KEY", ""),
			}),
		},
		Onboarding: OnboardingConfig{
			StateTTL: time.Duration(getEnvAsInt("ONBOARDING_STATE_TTL_HOURS", 24*30)) * time.Hour,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func nonEmpty(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
