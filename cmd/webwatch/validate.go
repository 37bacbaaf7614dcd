package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keepmind9/webwatch/internal/core"
	"github.com/spf13/cobra"
)

var (
	validateConfig string
	validateShow   bool
	validateJSON   bool
)

// ValidationResult represents the validation result
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Config   string   `json:"config"`
	Bots     int      `json:"bots"`
	Enabled  int      `json:"enabled"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate webwatch configuration file",
	Long: `Validate the webwatch configuration file without starting the service.

This command checks:
  - YAML syntax
  - Required fields
  - Bot credentials
  - Storage settings

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors`,
	Run: func(cmd *cobra.Command, args []string) {
		// Get config file path
		configFile := validateConfig
		if configFile == "" {
			// Try default locations
			for _, loc := range []string{
				"config.yaml",
				filepath.Join(os.Getenv("HOME"), ".config/webwatch/config.yaml"),
				"/etc/webwatch/config.yaml",
			} {
				if _, err := os.Stat(loc); err == nil {
					configFile = loc
					break
				}
			}
		}

		if configFile == "" {
			fmt.Println("❌ No configuration file found")
			fmt.Println("\nSpecify a config file with --config or ensure one exists at:")
			fmt.Println("  - ./config.yaml")
			fmt.Println("  - ~/.config/webwatch/config.yaml")
			fmt.Println("  - /etc/webwatch/config.yaml")
			os.Exit(1)
		}

		// Load configuration
		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			result := ValidationResult{
				Valid:  false,
				Config: configFile,
				Errors: []string{err.Error()},
			}
			outputValidationResult(result, validateJSON)
			os.Exit(1)
		}

		result := ValidationResult{
			Valid:   true,
			Config:  configFile,
			Bots:    len(cfg.Bots),
			Enabled: len(cfg.EnabledBots()),
		}
		result.Warnings = validateConfigDetails(cfg)

		// Show full config if requested
		if validateShow {
			fmt.Printf("✓ Configuration loaded: %s\n\n", configFile)
			fmt.Printf("Bots (%d):\n", len(cfg.Bots))
			for name, botConfig := range cfg.Bots {
				status := "disabled"
				if botConfig.Enabled {
					status = "enabled"
				}
				fmt.Printf("  - %s: %s\n", name, status)
			}
			fmt.Printf("\nStorage: %s\n", cfg.Storage.Path)
			fmt.Printf("Max websites per user: %d\n", cfg.Monitor.MaxWebsitesPerUser)
			fmt.Println()
		}

		outputValidationResult(result, validateJSON)
	},
}

func outputValidationResult(result ValidationResult, jsonFormat bool) {
	if jsonFormat {
		output, err := json.Marshal(result)
		if err != nil {
			fmt.Printf("{\"error\": \"failed to marshal json: %v\"}\n", err)
			return
		}
		fmt.Println(string(output))
		return
	}

	if result.Valid {
		fmt.Println("✓ Configuration is valid")
		fmt.Printf("  - Config: %s\n", result.Config)
		fmt.Printf("  - Bots configured: %d\n", result.Bots)
		fmt.Printf("  - Bots enabled: %d\n", result.Enabled)
		if len(result.Warnings) > 0 {
			fmt.Println("\n⚠️  Warnings:")
			for _, warning := range result.Warnings {
				fmt.Printf("  - %s\n", warning)
			}
		}
	} else {
		fmt.Println("❌ Configuration validation failed:")
		if len(result.Errors) > 0 {
			fmt.Println("\nErrors:")
			for _, errMsg := range result.Errors {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
	}
}

func validateConfigDetails(cfg *core.Config) []string {
	var warnings []string

	if cfg.Logging.File == "" {
		warnings = append(warnings, "No log file configured - logs go to stdout only")
	}

	if cfg.Monitor.MaxWebsitesPerUser == 0 {
		warnings = append(warnings, "monitor.max_websites_per_user not set - using the default limit")
	}

	return warnings
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfig, "config", "c", "", "Configuration file path")
	validateCmd.Flags().BoolVar(&validateShow, "show", false, "Show full configuration details")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
}
