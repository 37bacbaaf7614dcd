package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keepmind9/webwatch/internal/logger"
	"github.com/keepmind9/webwatch/pkg/constants"
	"github.com/open-dingtalk/dingtalk-stream-sdk-go/chatbot"
	"github.com/open-dingtalk/dingtalk-stream-sdk-go/client"
	"github.com/sirupsen/logrus"
)

// DingTalkBot implements BotAdapter interface for DingTalk using WebSocket long connection
type DingTalkBot struct {
	mu           sync.RWMutex
	clientID     string
	clientSecret string
	streamClient *client.StreamClient
	replier      *chatbot.ChatbotReplier
	webhooks     map[string]string // conversation ID -> session webhook URL
	handler      func(Incoming)
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewDingTalkBot creates a new DingTalk bot instance
func NewDingTalkBot(clientID, clientSecret string) *DingTalkBot {
	return &DingTalkBot{
		clientID:     clientID,
		clientSecret: clientSecret,
		replier:      chatbot.NewChatbotReplier(),
		webhooks:     make(map[string]string),
	}
}

// Start establishes WebSocket long connection to DingTalk and begins listening for messages
func (d *DingTalkBot) Start(handler func(Incoming)) error {
	d.SetHandler(handler)
	d.ctx, d.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"client_id": maskAppID(d.clientID),
	}).Info("starting-dingtalk-bot-with-websocket-long-connection")

	credential := client.NewAppCredentialConfig(d.clientID, d.clientSecret)

	d.mu.Lock()
	d.streamClient = client.NewStreamClient(client.WithAppCredential(credential))
	streamClient := d.streamClient
	d.mu.Unlock()

	streamClient.RegisterChatBotCallbackRouter(d.handleMessageReceive)

	// Start long connection
	go func() {
		if err := streamClient.Start(d.ctx); err != nil {
			logger.WithFields(logrus.Fields{
				"client_id": maskAppID(d.clientID),
				"error":     err,
			}).Error("dingtalk-websocket-connection-failed")
		}
	}()

	// Give connection time to establish
	time.Sleep(constants.ConnectionSettleDelay)

	logger.Info("dingtalk-websocket-long-connection-started")
	return nil
}

// handleMessageReceive handles incoming message events from DingTalk
func (d *DingTalkBot) handleMessageReceive(_ context.Context, data *chatbot.BotCallbackDataModel) ([]byte, error) {
	if data == nil {
		return []byte(""), nil
	}

	logger.WithFields(logrus.Fields{
		"platform":          "dingtalk",
		"conversation_id":   data.ConversationId,
		"conversation_type": data.ConversationType,
		"sender_id":         data.SenderId,
		"sender_staff_id":   data.SenderStaffId,
		"msg_id":            data.MsgId,
		"msg_type":          data.Msgtype,
		"text_content":      data.Text.Content,
	}).Info("received-dingtalk-message-event-parsed")

	content := ""
	if data.Msgtype == "text" {
		content = data.Text.Content
	}

	// Replies go through the per-conversation session webhook, so remember
	// the most recent one for this conversation
	if data.SessionWebhook != "" {
		d.mu.Lock()
		d.webhooks[data.ConversationId] = data.SessionWebhook
		d.mu.Unlock()
	}

	h := d.GetHandler()
	if h != nil {
		h(Incoming{
			Platform:  "dingtalk",
			UserID:    data.SenderStaffId, // Use staffId as user identifier
			Channel:   data.ConversationId,
			Text:      content,
			Timestamp: time.Now(),
		})
	}

	// Return success (empty response means no error)
	return []byte(""), nil
}

// Reply sends a message to a DingTalk conversation via its session webhook
func (d *DingTalkBot) Reply(target, text string) error {
	if target == "" {
		return fmt.Errorf("conversation ID is required for DingTalk")
	}

	d.mu.RLock()
	webhook, ok := d.webhooks[target]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no session webhook known for conversation %s", target)
	}

	// DingTalk message limit
	const maxDingTalkLength = constants.MaxDingTalkMessageLength
	if len(text) > maxDingTalkLength {
		logger.WithFields(logrus.Fields{
			"original_length": len(text),
			"max_length":      maxDingTalkLength,
		}).Info("truncating-message-for-dingtalk-limit")
		text = text[:maxDingTalkLength]
	}

	if err := d.replier.SimpleReplyText(d.ctx, webhook, []byte(text)); err != nil {
		logger.WithFields(logrus.Fields{
			"conversation_id": target,
			"error":           err,
		}).Error("failed-to-send-message-to-dingtalk")
		return fmt.Errorf("failed to send message to conversation %s: %w", target, err)
	}

	logger.WithField("conversation_id", target).Info("message-sent-to-dingtalk")
	return nil
}

// Stop closes the DingTalk WebSocket connection and cleans up resources
func (d *DingTalkBot) Stop() error {
	if d.cancel != nil {
		d.cancel()
	}

	d.mu.Lock()
	streamClient := d.streamClient
	d.streamClient = nil
	d.mu.Unlock()

	if streamClient != nil {
		streamClient.Close()
		logger.Info("dingtalk-websocket-connection-stopped")
	}

	logger.Info("dingtalk-bot-stopped")
	return nil
}

// SetHandler sets the incoming message handler in a thread-safe manner
func (d *DingTalkBot) SetHandler(handler func(Incoming)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = handler
}

// GetHandler gets the incoming message handler in a thread-safe manner
func (d *DingTalkBot) GetHandler() func(Incoming) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handler
}
