package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/webwatch/internal/logger"
	"github.com/keepmind9/webwatch/pkg/constants"
	"github.com/sirupsen/logrus"
)

// DiscordSessionInterface defines the interface we need from discordgo.Session
// This allows us to mock it in tests without depending on concrete types
type DiscordSessionInterface interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordBot implements BotAdapter interface for Discord
type DiscordBot struct {
	mu        sync.RWMutex
	token     string
	channelID string
	session   DiscordSessionInterface
	handler   func(Incoming)
}

// NewDiscordBot creates a new Discord bot instance
func NewDiscordBot(token, channelID string) *DiscordBot {
	return &DiscordBot{
		token:     token,
		channelID: channelID,
		session:   nil, // Will be created in Start()
	}
}

// Start establishes connection to Discord and begins listening for messages
func (d *DiscordBot) Start(handler func(Incoming)) error {
	d.SetHandler(handler)

	logger.WithFields(logrus.Fields{
		"token":   maskSecret(d.token),
		"channel": d.channelID,
	}).Info("starting-discord-bot")

	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}

	d.mu.Lock()
	d.session = session
	d.mu.Unlock()

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Ignore messages from bots
		if m.Author.Bot {
			return
		}

		logger.WithFields(logrus.Fields{
			"platform": "discord",
			"user_id":  m.Author.ID,
			"username": m.Author.Username,
			"channel":  m.ChannelID,
			"content":  m.Content,
		}).Debug("received-discord-message")

		h := d.GetHandler()
		if h != nil {
			h(Incoming{
				Platform:  "discord",
				UserID:    m.Author.ID,
				Channel:   m.ChannelID,
				Text:      m.Content,
				Timestamp: time.Now(),
			})

			logger.WithFields(logrus.Fields{
				"platform": "discord",
				"user":     m.Author.ID,
				"channel":  m.ChannelID,
			}).Info("message-received-from-discord")
		}
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}

	return nil
}

// Reply sends a message to a Discord channel
func (d *DiscordBot) Reply(target, text string) error {
	d.mu.RLock()
	session := d.session
	channelID := d.channelID
	d.mu.RUnlock()

	if session == nil {
		return fmt.Errorf("discord session not initialized")
	}

	// Use configured channel if not specified
	targetChannel := target
	if targetChannel == "" {
		targetChannel = channelID
	}

	// Discord limit: message length
	const maxDiscordLength = constants.MaxDiscordMessageLength
	if len(text) > maxDiscordLength {
		logger.WithFields(logrus.Fields{
			"original_length": len(text),
			"max_length":      maxDiscordLength,
		}).Info("truncating-message-for-discord-limit")
		// Keep the last (max-3) characters to show the newest content
		text = "..." + text[len(text)-maxDiscordLength+3:]
	}

	_, err := session.ChannelMessageSend(targetChannel, text)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"channel": targetChannel,
			"error":   err,
		}).Error("failed-to-send-message-to-discord")
		return fmt.Errorf("failed to send message to channel %s: %w", targetChannel, err)
	}

	logger.WithField("channel", targetChannel).Info("message-sent-to-discord")
	return nil
}

// Stop closes the Discord connection and cleans up resources
func (d *DiscordBot) Stop() error {
	d.mu.Lock()
	session := d.session
	d.session = nil
	d.mu.Unlock()

	if session == nil {
		return nil
	}

	if err := session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}

	return nil
}

// SetHandler sets the incoming message handler in a thread-safe manner
func (d *DiscordBot) SetHandler(handler func(Incoming)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = handler
}

// GetHandler gets the incoming message handler in a thread-safe manner
func (d *DiscordBot) GetHandler() func(Incoming) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handler
}
