package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type ClerkConfig struct {
	SecretKey            string
	WebhookSigningSecret string
}

// IsConfigured returns true if all required Clerk configuration is present
func (c ClerkConfig) IsConfigured() bool {
	return c.SecretKey != "" &&
		c.WebhookSigningSecret != ""
}

type SlackConfig struct {
	AlertWebhookURL string
	SalesWebhookURL string
}

// IsConfigured returns true if the Slack ops configuration is present
func (c SlackConfig) IsConfigured() bool {
	return c.AlertWebhookURL != ""
	// Note: SalesWebhookURL is optional
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	ServerLogsURL      string
	UseStrictConfig    bool // If true, error when any integration is not fully configured

	// Integration configurations (grouped)
	ClerkConfig ClerkConfig
	SlackConfig SlackConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	// Core required configuration
	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		// Core configuration
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		ServerLogsURL:      getEnvWithDefault("SERVER_LOGS_URL", ""),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "true") == "true",

		// Clerk configuration (optional)
		ClerkConfig: ClerkConfig{
			SecretKey:            os.Getenv("CLERK_SECRET_KEY"),
			WebhookSigningSecret: os.Getenv("CLERK_WEBHOOK_SIGNING_SECRET"),
		},

		// Slack configuration (optional)
		SlackConfig: SlackConfig{
			AlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
			SalesWebhookURL: os.Getenv("SLACK_SALES_WEBHOOK_URL"),
		},
	}

	// Log which integrations are configured
	if config.ClerkConfig.IsConfigured() {
		log.Printf("✅ Clerk authentication configured")
	} else {
		log.Printf("⚠️ Clerk authentication not configured - identity features will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("clerk authentication is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.SlackConfig.IsConfigured() {
		log.Printf("✅ Slack ops alerting configured")
	} else {
		log.Printf("⚠️ Slack ops alerting not configured - error alerts will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("slack ops alerting is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
