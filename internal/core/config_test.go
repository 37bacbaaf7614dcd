package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoadConfig_Valid tests loading a complete configuration
func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
bots:
  telegram:
    enabled: true
    token: "123:abc"
  discord:
    enabled: false
storage:
  path: "/tmp/webwatch-test.db"
monitor:
  max_websites_per_user: 5
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Bots["telegram"].Enabled)
	assert.Equal(t, "123:abc", cfg.Bots["telegram"].Token)
	assert.False(t, cfg.Bots["discord"].Enabled)
	assert.Equal(t, "/tmp/webwatch-test.db", cfg.Storage.Path)
	assert.Equal(t, 5, cfg.Monitor.MaxWebsitesPerUser)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

// TestLoadConfig_Defaults tests that defaults are filled in
func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
bots:
  telegram:
    enabled: true
    token: "123:abc"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogMaxSize, cfg.Logging.MaxSize)
	assert.Equal(t, DefaultLogMaxBackups, cfg.Logging.MaxBackups)
	assert.Equal(t, DefaultLogMaxAge, cfg.Logging.MaxAge)
	assert.Equal(t, DefaultStoragePath, cfg.Storage.Path)
	assert.Equal(t, 0, cfg.Monitor.MaxWebsitesPerUser) // workflow applies its own default
}

// TestLoadConfig_EnvExpansion tests ${VAR} expansion
func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("WEBWATCH_TEST_TOKEN", "secret-token")
	path := writeConfig(t, `
bots:
  telegram:
    enabled: true
    token: "${WEBWATCH_TEST_TOKEN}"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.Bots["telegram"].Token)
}

// TestLoadConfig_MissingEnvVar tests that unset variables fail loading
func TestLoadConfig_MissingEnvVar(t *testing.T) {
	path := writeConfig(t, `
bots:
  telegram:
    enabled: true
    token: "${WEBWATCH_DEFINITELY_UNSET_VAR}"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEBWATCH_DEFINITELY_UNSET_VAR")
}

// TestLoadConfig_Invalid tests validation failures
func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no bots", `
storage:
  path: "/tmp/x.db"
`},
		{"no enabled bots", `
bots:
  telegram:
    enabled: false
    token: "123:abc"
`},
		{"unknown platform", `
bots:
  carrierpigeon:
    enabled: true
    token: "coo"
`},
		{"telegram without token", `
bots:
  telegram:
    enabled: true
`},
		{"feishu without credentials", `
bots:
  feishu:
    enabled: true
    app_id: "only-id"
`},
		{"dingtalk without credentials", `
bots:
  dingtalk:
    enabled: true
`},
		{"negative website limit", `
bots:
  telegram:
    enabled: true
    token: "123:abc"
monitor:
  max_websites_per_user: -1
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

// TestLoadConfig_FileNotFound tests the missing file error
func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

// TestConfig_GetBotConfig tests bot config lookup
func TestConfig_GetBotConfig(t *testing.T) {
	cfg := &Config{
		Bots: map[string]BotConfig{
			"telegram": {Enabled: true, Token: "t"},
			"discord":  {Enabled: false, Token: "d"},
		},
	}

	botConfig, err := cfg.GetBotConfig("telegram")
	require.NoError(t, err)
	assert.Equal(t, "t", botConfig.Token)

	_, err = cfg.GetBotConfig("discord")
	assert.Error(t, err, "disabled bot should not be returned")

	_, err = cfg.GetBotConfig("feishu")
	assert.Error(t, err)
}

// TestConfig_EnabledBots tests the enabled bot listing
func TestConfig_EnabledBots(t *testing.T) {
	cfg := &Config{
		Bots: map[string]BotConfig{
			"telegram": {Enabled: true},
			"discord":  {Enabled: false},
			"feishu":   {Enabled: true},
		},
	}

	enabled := cfg.EnabledBots()
	assert.ElementsMatch(t, []string{"telegram", "feishu"}, enabled)
}
