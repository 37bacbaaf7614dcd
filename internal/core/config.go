package core

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel        = "info"
	DefaultLogMaxSize      = 100 // MB
	DefaultLogMaxBackups   = 5
	DefaultLogMaxAge       = 30 // days
	DefaultLogCompress     = true
	DefaultLogEnableStdout = true

	DefaultStoragePath = "webwatch.db"
)

// knownPlatforms are the bot types start-up knows how to construct
var knownPlatforms = map[string]struct{}{
	"discord":  {},
	"telegram": {},
	"feishu":   {},
	"dingtalk": {},
}

// LoadConfig loads configuration from file and expands environment variables
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedData, err := expandEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// expandEnv replaces ${VAR_NAME} patterns with environment variable values.
// Tokens and the storage path come in through this, so the core never reads
// environment variables anywhere else.
func expandEnv(input string) (string, error) {
	var missingVars []string

	result := os.Expand(input, func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		missingVars = append(missingVars, key)
		return "" // Return empty string to let config parsing fail
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return result, nil
}

// validateConfig performs basic validation on the configuration and fills
// in defaults
func validateConfig(config *Config) error {
	// Set default logging configuration
	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = DefaultLogMaxSize
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = DefaultLogMaxAge
	}
	if !config.Logging.Compress {
		config.Logging.Compress = DefaultLogCompress
	}
	if !config.Logging.EnableStdout {
		config.Logging.EnableStdout = DefaultLogEnableStdout
	}

	if config.Storage.Path == "" {
		config.Storage.Path = DefaultStoragePath
	}

	if config.Monitor.MaxWebsitesPerUser < 0 {
		return fmt.Errorf("monitor.max_websites_per_user must not be negative (got %d)",
			config.Monitor.MaxWebsitesPerUser)
	}

	// Validate at least one bot is configured
	if len(config.Bots) == 0 {
		return fmt.Errorf("at least one bot must be configured")
	}

	enabled := 0
	for botType, botConfig := range config.Bots {
		if _, ok := knownPlatforms[botType]; !ok {
			return fmt.Errorf("unknown bot type %q", botType)
		}
		if !botConfig.Enabled {
			continue
		}
		enabled++

		// Check credentials the adapter constructors require
		switch botType {
		case "discord", "telegram":
			if botConfig.Token == "" {
				return fmt.Errorf("bot %s is enabled but has no token configured", botType)
			}
		case "feishu":
			if botConfig.AppID == "" || botConfig.AppSecret == "" {
				return fmt.Errorf("bot feishu is enabled but app_id/app_secret are not configured")
			}
		case "dingtalk":
			if botConfig.ClientID == "" || botConfig.ClientSecret == "" {
				return fmt.Errorf("bot dingtalk is enabled but client_id/client_secret are not configured")
			}
		}
	}

	if enabled == 0 {
		return fmt.Errorf("at least one bot must be enabled")
	}

	return nil
}

// GetBotConfig retrieves configuration for a specific bot
func (c *Config) GetBotConfig(botType string) (BotConfig, error) {
	botConfig, exists := c.Bots[botType]
	if !exists {
		return BotConfig{}, fmt.Errorf("bot type %s not found in configuration", botType)
	}

	if !botConfig.Enabled {
		return BotConfig{}, fmt.Errorf("bot type %s is disabled", botType)
	}

	return botConfig, nil
}

// EnabledBots returns the bot types that are enabled in the configuration
func (c *Config) EnabledBots() []string {
	var out []string
	for botType, botConfig := range c.Bots {
		if botConfig.Enabled {
			out = append(out, botType)
		}
	}
	return out
}
