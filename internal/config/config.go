package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	// Detector tunables. Defaults match production behavior; exposed so
	// deployments can sweep them without a rebuild.
	SimilarityThreshold float64
	AmountTolerance     float64
	MinOccurrences      int

	// Reminder sweep
	ReminderDays     int
	ReminderSchedule string

	// SMTP settings for reminder emails
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		DBConn:              getEnv("DB_CONN", "host=localhost port=5432 user=subwatch password=subwatch dbname=subwatch sslmode=disable"),
		LogLevel:            getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:           getEnv("JWT_SECRET", "secret"),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.75),
		AmountTolerance:     getEnvFloat("AMOUNT_TOLERANCE", 0.02),
		MinOccurrences:      getEnvInt("MIN_OCCURRENCES", 3),
		ReminderDays:        getEnvInt("REMINDER_DAYS", 3),
		ReminderSchedule:    getEnv("REMINDER_SCHEDULE", "0 9 * * *"),
		SMTPHost:            getEnv("SMTP_HOST", "localhost"),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SenderEmail:         getEnv("SENDER_EMAIL", "noreply@subwatch.local"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	if cfg.MinOccurrences < 2 {
		return nil, fmt.Errorf("MIN_OCCURRENCES must be at least 2")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}
