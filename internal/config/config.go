package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	LogLevel                         string `mapstructure:"LOG_LEVEL"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	AdminAPIKey                      string `mapstructure:"ADMIN_API_KEY"`
	AdminEmailSuffixesRaw            string `mapstructure:"ADMIN_EMAIL_SUFFIXES"`
	SendGridAPIKey                   string `mapstructure:"SENDGRID_API_KEY"`
	MailFrom                         string `mapstructure:"MAIL_FROM"`
	SMTPHost                         string `mapstructure:"SMTP_HOST"`
	SMTPPort                         string `mapstructure:"SMTP_PORT"`
	SMTPUser                         string `mapstructure:"SMTP_USER"`
	SMTPPass                         string `mapstructure:"SMTP_PASS"`
	GeminiAPIKey                     string `mapstructure:"GEMINI_API_KEY"`
	GeminiBaseURL                    string `mapstructure:"GEMINI_BASE_URL"`
	GeminiDefaultModel               string `mapstructure:"GEMINI_DEFAULT_MODEL"`
	GeminiDefaultVersion             string `mapstructure:"GEMINI_DEFAULT_VERSION"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
}

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"LOG_LEVEL",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"ADMIN_API_KEY",
	"ADMIN_EMAIL_SUFFIXES",
	"SENDGRID_API_KEY",
	"MAIL_FROM",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USER",
	"SMTP_PASS",
	"GEMINI_API_KEY",
	"GEMINI_BASE_URL",
	"GEMINI_DEFAULT_MODEL",
	"GEMINI_DEFAULT_VERSION",
	"CLIENT_URL",
}

// LoadConfig loads configuration from environment variables using Viper.
// Outside release mode a .env file in the working directory is read first, if present.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ADMIN_EMAIL_SUFFIXES", "@admin.com")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("GEMINI_DEFAULT_MODEL", "gemini-1.5-flash-latest")
	v.SetDefault("GEMINI_DEFAULT_VERSION", "v1beta")

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.New("failed to bind " + key + ": " + err.Error())
		}
	}

	if v.GetString("GIN_MODE") != "release" {
		// A missing .env is fine; real deployments inject the environment directly.
		_ = godotenv.Load()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the server cannot start without.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" {
		return errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if c.AdminAPIKey == "" {
		return errors.New("ADMIN_API_KEY is required")
	}
	if c.SendGridAPIKey == "" && c.SMTPHost == "" {
		return errors.New("either SENDGRID_API_KEY or SMTP_HOST is required")
	}
	if c.MailFrom == "" {
		return errors.New("MAIL_FROM is required")
	}
	return nil
}

// AdminEmailSuffixes splits ADMIN_EMAIL_SUFFIXES on commas, dropping blanks.
func (c *Config) AdminEmailSuffixes() []string {
	var out []string
	for _, s := range strings.Split(c.AdminEmailSuffixesRaw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
