package core

// Config represents the complete webwatch configuration structure
type Config struct {
	Bots    map[string]BotConfig `yaml:"bots"`
	Storage StorageConfig        `yaml:"storage"`
	Monitor MonitorConfig        `yaml:"monitor"`
	Logging LoggingConfig        `yaml:"logging"`
}

// BotConfig represents one platform adapter configuration
type BotConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Token             string `yaml:"token"`              // Discord/Telegram bot token
	ChannelID         string `yaml:"channel_id"`         // Discord: default reply channel
	AppID             string `yaml:"app_id"`             // Feishu app credentials
	AppSecret         string `yaml:"app_secret"`
	ClientID          string `yaml:"client_id"`          // DingTalk app credentials
	ClientSecret      string `yaml:"client_secret"`
	EncryptKey        string `yaml:"encrypt_key"`        // Feishu: event encryption key (optional)
	VerificationToken string `yaml:"verification_token"` // Feishu: verification token (optional)
}

// StorageConfig represents the website store configuration
type StorageConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// MonitorConfig represents the website monitor workflow configuration
type MonitorConfig struct {
	MaxWebsitesPerUser int `yaml:"max_websites_per_user"` // Per-owner website limit (default: 2)
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	File         string `yaml:"file"`          // Log file path
	MaxSize      int    `yaml:"max_size"`      // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups"`   // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age"`       // Maximum days to retain (default: 30)
	Compress     bool   `yaml:"compress"`      // Whether to compress old logs (default: true)
	EnableStdout bool   `yaml:"enable_stdout"` // Also output to stdout (default: true)
}
