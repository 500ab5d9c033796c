// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret  string `mapstructure:"JWT_SECRET"`
	Port       string `mapstructure:"PORT"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	RedisURL   string `mapstructure:"REDIS_URL"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// Organization identity used by SEO endpoints and outbound mail.
	AppName       string `mapstructure:"APP_NAME"`
	AppDomain     string `mapstructure:"APP_DOMAIN"`
	OrgName       string `mapstructure:"ORG_NAME"`
	OrgAddress    string `mapstructure:"ORG_ADDRESS"`
	OrgPhone      string `mapstructure:"ORG_PHONE"`
	OrgContactURL string `mapstructure:"ORG_CONTACT_URL"`

	// Notification backends. EmailBackend "smtp" targets a local Mailpit in
	// development; "api" posts to the provider's HTTP endpoint.
	EmailBackend string `mapstructure:"EMAIL_BACKEND"`
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	EmailAPIKey  string `mapstructure:"EMAIL_API_KEY"`
	EmailAPIURL  string `mapstructure:"EMAIL_API_URL"`
	SMSAPIKey    string `mapstructure:"SMS_API_KEY"`
	SMSAPIURL    string `mapstructure:"SMS_API_URL"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() *Config {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if errors.As(err, &notFoundErr) {
			log.Println("Config file not found; using environment variables and defaults")
		} else {
			log.Fatalf("Error reading config file: %s", err)
		}
	}

	// Set default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "studentsupport")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("APP_NAME", "Student Support")
	viper.SetDefault("APP_DOMAIN", "studentsupport.newabilities.org")
	viper.SetDefault("ORG_NAME", "New Abilities Foundation")
	viper.SetDefault("ORG_ADDRESS", "1320 Pepperhill Ln, Fort Worth, TX, 76131")
	viper.SetDefault("ORG_PHONE", "1 (632) 432-9400")
	viper.SetDefault("ORG_CONTACT_URL", "https://newabilities.org/contact")
	viper.SetDefault("EMAIL_BACKEND", "smtp")
	viper.SetDefault("SMTP_HOST", "localhost")
	viper.SetDefault("SMTP_PORT", "1025")
	viper.SetDefault("EMAIL_API_URL", "https://api.emailit.com/v1")
	viper.SetDefault("SMS_API_URL", "https://api.easify.app/v1")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode config into struct, %v", err)
	}

	return &config
}
