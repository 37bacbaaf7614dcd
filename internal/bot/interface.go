// Package bot provides bot adapters for various IM platforms.
//
// This package implements a unified interface for connecting to multiple chat
// platforms, including Discord, Telegram, Feishu (Lark), and DingTalk. Each
// adapter handles platform-specific connection logic, message normalization,
// and reply delivery.
//
// # Supported Platforms
//
//   - Discord: WebSocket connection with real-time message handling
//   - Telegram: Long polling for message updates
//   - Feishu/Lark: WebSocket long connection for enterprise messaging
//   - DingTalk: WebSocket long connection for enterprise messaging
//
// # Usage
//
// To use a bot adapter:
//
//  1. Create an adapter instance using the New* function for your platform
//  2. Call Start() with a handler that receives normalized Incoming events
//  3. Send replies using Reply()
//  4. Call Stop() when shutting down
//
// Example:
//
//	discordBot := bot.NewDiscordBot(token, channelID)
//	err := discordBot.Start(func(msg bot.Incoming) {
//		fmt.Printf("Received: %s\n", msg.Text)
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	discordBot.Reply(channelID, "Hello, world!")
//	discordBot.Stop()
//
// # Thread Safety
//
// All bot adapters are thread-safe and use internal mutexes to protect
// shared state. The incoming handler may be called concurrently from the
// adapter's own receive goroutines.
package bot

import "time"

// BotAdapter defines the interface for platform adapters
type BotAdapter interface {
	// Start starts the adapter, establishes the connection and begins
	// delivering normalized events to handler. Transient receive errors
	// are logged and the offending event skipped; they never end the
	// process.
	Start(handler func(Incoming)) error

	// Reply sends a message back to the platform, best effort.
	// Adapter is responsible for:
	//   - Truncating to platform limits
	//   - Platform-specific formatting
	// The caller does not retry on failure.
	Reply(target, text string) error

	// Stop stops the adapter and cleans up resources
	Stop() error
}

// Incoming is a normalized, platform-independent representation of one
// received message. It is created fresh per received message and consumed
// exactly once by the dispatcher.
type Incoming struct {
	Platform  string // discord/telegram/feishu/dingtalk
	UserID    string // Platform-scoped user identifier
	Channel   string // Reply target; may differ from UserID (channel vs DM)
	Text      string // Raw message text
	Timestamp time.Time
}
