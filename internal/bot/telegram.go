package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keepmind9/webwatch/internal/logger"
	"github.com/keepmind9/webwatch/pkg/constants"
	"github.com/sirupsen/logrus"
)

// TelegramBot implements BotAdapter interface for Telegram using long polling
type TelegramBot struct {
	mu      sync.RWMutex
	token   string
	bot     *tgbotapi.BotAPI
	handler func(Incoming)
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewTelegramBot creates a new Telegram bot instance
func NewTelegramBot(token string) *TelegramBot {
	return &TelegramBot{
		token: token,
	}
}

// Start establishes long polling connection to Telegram and begins listening for messages
func (t *TelegramBot) Start(handler func(Incoming)) error {
	t.SetHandler(handler)
	t.ctx, t.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"token": maskSecret(t.token),
	}).Info("starting-telegram-bot-with-long-polling")

	api, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err,
		}).Error("failed-to-initialize-telegram-bot")
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	t.mu.Lock()
	t.bot = api
	t.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"bot_username": api.Self.UserName,
		"bot_id":       api.Self.ID,
	}).Info("telegram-bot-initialized-successfully")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(constants.DefaultPollTimeout.Seconds()) // Long poll timeout in seconds

	updates := api.GetUpdatesChan(u)

	// Process updates in background
	go func() {
		for {
			select {
			case <-t.ctx.Done():
				logger.Info("telegram-long-polling-stopped")
				return
			case update, ok := <-updates:
				if !ok {
					logger.Info("telegram-updates-channel-closed")
					return
				}

				if update.Message != nil {
					t.handleMessage(update.Message)
				}
			}
		}
	}()

	logger.Info("telegram-long-polling-connection-started")
	return nil
}

// handleMessage handles incoming message events from Telegram
func (t *TelegramBot) handleMessage(message *tgbotapi.Message) {
	if message == nil {
		return
	}

	var userID, chatID, content string
	var userName string

	if message.From != nil {
		userID = fmt.Sprintf("%d", message.From.ID)
		userName = message.From.UserName
	}

	if message.Chat != nil {
		chatID = fmt.Sprintf("%d", message.Chat.ID)
	}

	if message.Text != "" {
		content = message.Text
	}

	logger.WithFields(logrus.Fields{
		"platform":    "telegram",
		"user_id":     userID,
		"username":    userName,
		"chat_id":     chatID,
		"message_id":  message.MessageID,
		"content":     content,
		"content_len": len(content),
	}).Info("received-telegram-message-parsed")

	// Only process text messages
	if message.Text != "" {
		h := t.GetHandler()
		if h != nil {
			h(Incoming{
				Platform:  "telegram",
				UserID:    userID,
				Channel:   chatID,
				Text:      content,
				Timestamp: time.Now(),
			})
		}
	}
}

// Reply sends a message to a Telegram chat
func (t *TelegramBot) Reply(target, text string) error {
	t.mu.RLock()
	api := t.bot
	t.mu.RUnlock()

	if api == nil {
		return fmt.Errorf("telegram bot not initialized")
	}

	if target == "" {
		return fmt.Errorf("chat ID is required for Telegram")
	}

	// Telegram message limit
	const maxTelegramLength = constants.MaxTelegramMessageLength
	if len(text) > maxTelegramLength {
		logger.WithFields(logrus.Fields{
			"original_length": len(text),
			"max_length":      maxTelegramLength,
		}).Info("truncating-message-for-telegram-limit")
		text = text[:maxTelegramLength]
	}

	// Parse chat ID (convert string to int64)
	var chatIDInt int64
	if _, err := fmt.Sscanf(target, "%d", &chatIDInt); err != nil {
		return fmt.Errorf("invalid chat ID format: %w", err)
	}

	msg := tgbotapi.NewMessage(chatIDInt, text)

	_, err := api.Send(msg)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": target,
			"error":   err,
		}).Error("failed-to-send-message-to-telegram")
		return fmt.Errorf("failed to send message to chat %s: %w", target, err)
	}

	logger.WithField("chat_id", target).Info("message-sent-to-telegram")
	return nil
}

// Stop closes the Telegram long polling connection and cleans up resources
func (t *TelegramBot) Stop() error {
	if t.cancel != nil {
		t.cancel()
	}

	t.mu.Lock()
	api := t.bot
	t.bot = nil
	t.mu.Unlock()

	if api != nil {
		api.StopReceivingUpdates()
		logger.Info("telegram-long-polling-stopped")
	}

	logger.Info("telegram-bot-stopped")
	return nil
}

// SetHandler sets the incoming message handler in a thread-safe manner
func (t *TelegramBot) SetHandler(handler func(Incoming)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

// GetHandler gets the incoming message handler in a thread-safe manner
func (t *TelegramBot) GetHandler() func(Incoming) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.handler
}
