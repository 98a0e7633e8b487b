package config

import (
	"os"
	"strconv"

	"github.com/Jeng2004/t-double-project-sub000/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB

	JWTSecret string

	Stripe Stripe
	SMTP   SMTP

	TMPLDir   string
	UploadDir string

	// Days after delivery during which a return request is accepted.
	ReturnWindowDays int
}

type DB struct {
	database.Config
}

type Stripe struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		JWTSecret: getEnv("JWT_SECRET", log),
		Stripe: Stripe{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", log),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", log),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", log),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", log),
		},
		SMTP: SMTP{
			Host:     getEnv("SMTP_HOST", log),
			Port:     getEnvInt("SMTP_PORT", log),
			User:     getEnv("SMTP_USER", log),
			Password: getEnv("SMTP_PASSWORD", log),
			From:     getEnv("SMTP_FROM", log),
		},
		TMPLDir:          getEnv("TMPL_DIR", log),
		UploadDir:        getEnvDefault("UPLOAD_DIR", "uploads"),
		ReturnWindowDays: atoiDefault(os.Getenv("RETURN_WINDOW_DAYS"), 3),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvInt(key string, log *zap.Logger) int {
	valStr := getEnv(key, log)
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Error("environment variable is not an int", zap.String("key", key), zap.Error(err))
		panic("invalid int value for environment variable: " + key)
	}
	return val
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
