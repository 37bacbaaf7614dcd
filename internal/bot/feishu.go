package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/keepmind9/webwatch/internal/logger"
	"github.com/keepmind9/webwatch/pkg/constants"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/larksuite/oapi-sdk-go/v3/ws"
	"github.com/sirupsen/logrus"
)

// FeishuBot implements BotAdapter interface for Feishu (Lark) using WebSocket long connection
type FeishuBot struct {
	AppID             string
	AppSecret         string
	EncryptKey        string // Optional, for encrypted events
	VerificationToken string // Optional, for event verification

	mu         sync.RWMutex
	wsClient   *ws.Client
	larkClient *lark.Client
	handler    func(Incoming)
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewFeishuBot creates a new Feishu bot instance
func NewFeishuBot(appID, appSecret string) *FeishuBot {
	return &FeishuBot{
		AppID:      appID,
		AppSecret:  appSecret,
		larkClient: lark.NewClient(appID, appSecret),
	}
}

// Start establishes WebSocket long connection to Feishu and begins listening for messages
func (f *FeishuBot) Start(handler func(Incoming)) error {
	f.SetHandler(handler)
	f.ctx, f.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"app_id": maskAppID(f.AppID),
	}).Info("starting-feishu-bot-with-websocket-long-connection")

	eventDispatcher := dispatcher.NewEventDispatcher(f.VerificationToken, f.EncryptKey)

	eventDispatcher.OnP2MessageReceiveV1(func(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
		return f.handleMessageReceive(ctx, event)
	})

	f.mu.Lock()
	f.wsClient = ws.NewClient(f.AppID, f.AppSecret,
		ws.WithEventHandler(eventDispatcher),
		ws.WithLogLevel(larkcore.LogLevelInfo),
		ws.WithAutoReconnect(true),
	)
	wsClient := f.wsClient
	f.mu.Unlock()

	// Start long connection (this blocks)
	go func() {
		if err := wsClient.Start(f.ctx); err != nil {
			logger.WithFields(logrus.Fields{
				"app_id": maskAppID(f.AppID),
				"error":  err,
			}).Error("feishu-websocket-connection-failed")
		}
	}()

	// Give connection time to establish
	time.Sleep(constants.ConnectionSettleDelay)

	logger.Info("feishu-websocket-long-connection-started")
	return nil
}

// handleMessageReceive handles incoming message events from Feishu
func (f *FeishuBot) handleMessageReceive(_ context.Context, event *larkim.P2MessageReceiveV1) error {
	if event == nil || event.Event == nil {
		return nil
	}

	ev := event.Event

	var messageID, chatID, senderID, content string
	var messageType, chatType string

	if ev.Message != nil {
		if ev.Message.MessageId != nil {
			messageID = *ev.Message.MessageId
		}
		if ev.Message.ChatId != nil {
			chatID = *ev.Message.ChatId
		}
		if ev.Message.MessageType != nil {
			messageType = *ev.Message.MessageType
		}
		if ev.Message.ChatType != nil {
			chatType = *ev.Message.ChatType
		}
		// Content is a JSON string, e.g. {"text":"actual message"}
		if ev.Message.Content != nil {
			content = extractTextContent(*ev.Message.Content)
		}
	}

	if ev.Sender != nil && ev.Sender.SenderId != nil {
		if ev.Sender.SenderId.UserId != nil {
			senderID = *ev.Sender.SenderId.UserId
		}
	}

	logger.WithFields(logrus.Fields{
		"platform":     "feishu",
		"user_id":      senderID,
		"chat_id":      chatID,
		"chat_type":    chatType,
		"message_id":   messageID,
		"message_type": messageType,
		"content":      content,
		"content_len":  len(content),
	}).Info("received-feishu-message-event-parsed")

	h := f.GetHandler()
	if h != nil {
		h(Incoming{
			Platform:  "feishu",
			UserID:    senderID,
			Channel:   chatID,
			Text:      content,
			Timestamp: time.Now(),
		})
	}

	return nil
}

// Reply sends a message to a Feishu chat
func (f *FeishuBot) Reply(target, text string) error {
	if f.larkClient == nil {
		return fmt.Errorf("feishu client not initialized")
	}

	if target == "" {
		return fmt.Errorf("chat ID is required for Feishu")
	}

	// Feishu limit: text message content length
	const maxFeishuLength = constants.MaxFeishuMessageLength
	if len(text) > maxFeishuLength {
		logger.WithFields(logrus.Fields{
			"original_length": len(text),
			"max_length":      maxFeishuLength,
		}).Info("truncating-message-for-feishu-limit")
		text = text[:maxFeishuLength]
	}

	// Text message content format: {"text":"actual content"}
	contentBytes, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode message content: %w", err)
	}

	body := larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(target).
		MsgType(larkim.MsgTypeText).
		Content(string(contentBytes)).
		Build()

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(body).
		Build()

	resp, err := f.larkClient.Im.Message.Create(f.ctx, req)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": target,
			"error":   err,
		}).Error("failed-to-send-message-to-feishu")
		return fmt.Errorf("failed to send message to chat %s: %w", target, err)
	}

	if !resp.Success() {
		logger.WithFields(logrus.Fields{
			"chat_id":    target,
			"code":       resp.Code,
			"msg":        resp.Msg,
			"request_id": resp.RequestId,
		}).Error("failed-to-send-message-to-feishu-api-error")
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	logger.WithField("chat_id", target).Info("message-sent-to-feishu")
	return nil
}

// Stop closes the Feishu WebSocket connection and cleans up resources
func (f *FeishuBot) Stop() error {
	if f.cancel != nil {
		f.cancel()
	}

	f.mu.Lock()
	wsClient := f.wsClient
	f.wsClient = nil
	f.mu.Unlock()

	if wsClient != nil {
		// ws.Client has no Stop method; the connection is managed by the context
		logger.Info("feishu-websocket-connection-stopped")
	}

	logger.Info("feishu-bot-stopped")
	return nil
}

// SetHandler sets the incoming message handler in a thread-safe manner
func (f *FeishuBot) SetHandler(handler func(Incoming)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
}

// GetHandler gets the incoming message handler in a thread-safe manner
func (f *FeishuBot) GetHandler() func(Incoming) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.handler
}

// extractTextContent extracts actual text from Feishu message content.
// Feishu text message format: {"text":"actual message"}
func extractTextContent(content string) string {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err == nil && payload.Text != "" {
		return payload.Text
	}
	return content
}
