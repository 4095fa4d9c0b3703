package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// ScheduleRule defines one recurring play day pattern used by schedule
// generation
type ScheduleRule struct {
	RRule       string `yaml:"rrule" validate:"required"`
	Title       string `yaml:"title" validate:"required"`
	Description string `yaml:"description,omitempty"`
	StartTime   string `yaml:"startTime" validate:"required"`
	EndTime     string `yaml:"endTime" validate:"required"`
	Courts      int    `yaml:"courts,omitempty" validate:"min=0"`
}

// OAuthClientConfig mirrors the installed-application client JSON Google
// issues; it is marshalled back to JSON for the oauth2 library
type OAuthClientConfig struct {
	Installed struct {
		ClientID                string   `yaml:"clientID" json:"client_id"`
		ProjectID               string   `yaml:"projectID" json:"project_id"`
		AuthURI                 string   `yaml:"authURI" json:"auth_uri"`
		TokenURI                string   `yaml:"tokenURI" json:"token_uri"`
		AuthProviderX509CertURL string   `yaml:"authProviderCertURL" json:"auth_provider_x509_cert_url"`
		ClientSecret            string   `yaml:"clientSecret" json:"client_secret"`
		RedirectURIs            []string `yaml:"redirectURIs" json:"redirect_uris"`
	} `yaml:"installed" json:"installed"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL   string             `yaml:"databaseURL" validate:"required"`
	ListenAddr    string             `yaml:"listenAddr,omitempty"`
	GmailUserID   string             `yaml:"gmailUserID,omitempty"`
	GmailSender   string             `yaml:"gmailSender,omitempty"`
	OAuthClient   *OAuthClientConfig `yaml:"oauthClient,omitempty"`
	ScheduleRules []ScheduleRule     `yaml:"scheduleRules,omitempty" validate:"dive"`
	Environment   string             `yaml:"environment,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from playday_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, rule := range cfg.ScheduleRules {
		if _, err := rrule.StrToRRule(rule.RRule); err != nil {
			return fmt.Errorf("invalid rrule in scheduleRules[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for playday_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "playday_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or %s", configFileName, homeDir)
}
