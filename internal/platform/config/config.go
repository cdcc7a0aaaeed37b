package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config captures service level configuration loaded from the environment.
type Config struct {
	Addr string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig

	PaymentURL string

	Auth AuthConfig

	LogLevel string

	// Jurisdictional deadlines. These encode legal timelines, so they are
	// configuration with legacy defaults rather than in-code constants.
	PermitTermDays  int
	CautionTermDays int
	HomeProvince    string
}

// DatabaseConfig holds PostgreSQL DSN components.
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	Username string
	Password string
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		d.Host, d.Port, d.Name, d.Username, d.Password)
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	SigningKey string
	Issuer     string
}

// RedisConfig holds draft-store cache settings.
type RedisConfig struct {
	URL string
}

// KafkaConfig holds report-queue producer settings.
type KafkaConfig struct {
	Brokers     string
	ReportTopic string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr: envOr("MHR_API_ADDR", ":8080"),
		Database: DatabaseConfig{
			Host:     envOr("APP_DATABASE_HOST", "localhost"),
			Port:     envIntOr("APP_DATABASE_PORT", 5432),
			Name:     envOr("APP_DATABASE_NAME", "mhr"),
			Username: envOr("APP_DATABASE_USERNAME", "mhr"),
			Password: os.Getenv("APP_DATABASE_PASSWORD"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:     os.Getenv("KAFKA_BROKERS"),
			ReportTopic: envOr("REPORT_TOPIC", "mhr-registration-reports"),
		},
		PaymentURL: os.Getenv("PAYMENT_SVC_URL"),
		Auth: AuthConfig{
			SigningKey: os.Getenv("JWT_SIGNING_KEY"),
			Issuer:     envOr("JWT_ISSUER", "mhregistry"),
		},
		LogLevel:        envOr("LOG_LEVEL", "info"),
		PermitTermDays:  envIntOr("PERMIT_TERM_DAYS", 30),
		CautionTermDays: envIntOr("CAUTION_TERM_DAYS", 90),
		HomeProvince:    envOr("HOME_PROVINCE", "BC"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
