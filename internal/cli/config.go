package cli

import (
	"errors"

	"github.com/spf13/viper"

	"github.com/luminher/luminher-api/internal/session"
)

// Config holds luminctl settings, read from LUMINHER_* environment variables.
type Config struct {
	APIURL      string `mapstructure:"API_URL"`
	APIKey      string `mapstructure:"API_KEY"`
	SessionFile string `mapstructure:"SESSION_FILE"`
	Debug       bool   `mapstructure:"DEBUG"`
}

// LoadConfig reads the luminctl configuration.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LUMINHER")
	v.AutomaticEnv()

	v.SetDefault("API_URL", "http://localhost:8080")
	v.SetDefault("DEBUG", false)
	for _, key := range []string{"API_URL", "API_KEY", "SESSION_FILE", "DEBUG"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	if cfg.SessionFile == "" {
		path, err := session.DefaultPath()
		if err != nil {
			return nil, err
		}
		cfg.SessionFile = path
	}
	return &cfg, nil
}
