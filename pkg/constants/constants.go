package constants

import "time"

// Message length limits for different platforms
const (
	// MaxDiscordMessageLength is Discord's message character limit
	MaxDiscordMessageLength = 2000
	// MaxTelegramMessageLength is Telegram's message character limit
	MaxTelegramMessageLength = 4096
	// MaxFeishuMessageLength is Feishu's message character limit
	MaxFeishuMessageLength = 20000
	// MaxDingTalkMessageLength is DingTalk's message character limit
	MaxDingTalkMessageLength = 20000
)

// Timeouts and delays
const (
	// DefaultPollTimeout is the timeout for Telegram long polling
	DefaultPollTimeout = 60 * time.Second
	// ConnectionSettleDelay is how long WebSocket adapters wait after
	// starting the connection goroutine before reporting success
	ConnectionSettleDelay = 2 * time.Second
)

// Token masking
const (
	// MinSecretLengthForMasking is the minimum secret length to apply masking
	MinSecretLengthForMasking = 10
	// SecretMaskPrefixLength is the length of prefix to show before masking
	SecretMaskPrefixLength = 7
	// SecretMaskSuffixLength is the length of suffix to show after masking
	SecretMaskSuffixLength = 4
)

// AppID masking
const (
	// MinAppIDLengthForMasking is the minimum app ID length to apply masking
	MinAppIDLengthForMasking = 8
	// AppIDMaskPrefixLength is the length of prefix to show before masking
	AppIDMaskPrefixLength = 4
	// AppIDMaskSuffixLength is the length of suffix to show after masking
	AppIDMaskSuffixLength = 4
)

// Website monitor defaults
const (
	// DefaultMaxWebsitesPerUser is how many websites one owner may monitor
	DefaultMaxWebsitesPerUser = 2
)
