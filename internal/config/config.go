package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`

	SMSBaseURL string `envconfig:"SMS_BASE_URL"`
	SMSApiKey  string `envconfig:"SMS_API_KEY"`

	BotCheckURL    string `envconfig:"BOTCHECK_URL"`
	BotCheckSecret string `envconfig:"BOTCHECK_SECRET"`

	// OTPTokenSecret signs phone-verification proof tokens.
	OTPTokenSecret string `envconfig:"OTP_TOKEN_SECRET" default:"dev-only-secret"`

	// SweepInterval controls how often expired stock locks are reclaimed.
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}

	return &cfg
}
