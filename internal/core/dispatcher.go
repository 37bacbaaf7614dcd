package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/keepmind9/webwatch/internal/bot"
	"github.com/keepmind9/webwatch/internal/logger"
	"github.com/sirupsen/logrus"
)

// genericFailureReply is sent to the user when an action handler fails or
// panics. The underlying error is logged, never leaked.
const genericFailureReply = "Sorry, something went wrong while handling your message. Please try again."

// Dispatcher consumes normalized incoming messages, resolves them against
// the command registry and executes the resolved behavior. It holds no
// per-message state of its own and is safe to call concurrently from every
// platform's receive loop.
type Dispatcher struct {
	registry *Registry
	sessions *SessionStore
	unknown  ActionFunc

	mu       sync.RWMutex
	adapters map[string]bot.BotAdapter
}

// NewDispatcher creates a dispatcher. The unknown-command handler is
// required: it is the hook multi-step conversations are built on, so a
// missing handler is a construction-time error rather than a runtime
// fallback.
func NewDispatcher(registry *Registry, sessions *SessionStore, unknown ActionFunc) (*Dispatcher, error) {
	if registry == nil {
		return nil, errors.New("dispatcher requires a command registry")
	}
	if sessions == nil {
		return nil, errors.New("dispatcher requires a session store")
	}
	if unknown == nil {
		return nil, errors.New("dispatcher requires an unknown-command handler")
	}
	return &Dispatcher{
		registry: registry,
		sessions: sessions,
		unknown:  unknown,
		adapters: make(map[string]bot.BotAdapter),
	}, nil
}

// RegisterAdapter registers the adapter replies for platform go through.
func (d *Dispatcher) RegisterAdapter(platform string, adapter bot.BotAdapter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.adapters[platform] = adapter
}

// Registry returns the command registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Sessions returns the session store shared with workflow handlers.
func (d *Dispatcher) Sessions() *SessionStore {
	return d.sessions
}

// Reply sends text to target on platform through the registered adapter.
// Send failures are reported to the caller but never retried here.
func (d *Dispatcher) Reply(platform, target, text string) error {
	d.mu.RLock()
	adapter := d.adapters[platform]
	d.mu.RUnlock()

	if adapter == nil {
		return fmt.Errorf("no adapter registered for platform %s", platform)
	}
	return adapter.Reply(target, text)
}

// Handle processes one incoming message. It never panics or returns an
// error to the receive loop: business failures become a user-visible reply
// or a logged-and-dropped event.
//
// The command token is the first whitespace-delimited word of the text,
// matched exactly. When no command matches, the unknown-command handler
// runs instead; it inspects session state to decide what the text means,
// which keeps the dispatcher free of workflow-specific logic.
func (d *Dispatcher) Handle(ctx context.Context, msg bot.Incoming) {
	logger.WithFields(logrus.Fields{
		"platform": msg.Platform,
		"user":     msg.UserID,
		"channel":  msg.Channel,
	}).Info("processing-user-message")

	var token string
	if fields := strings.Fields(msg.Text); len(fields) > 0 {
		token = fields[0]
	}

	cmd, ok := d.registry.Resolve(token, msg.Platform)
	if !ok {
		d.runAction(ctx, d.unknown, msg, "unknown-command-handler")
		return
	}

	if cmd.Message != "" {
		if err := d.Reply(msg.Platform, msg.Channel, cmd.Message); err != nil {
			logger.WithFields(logrus.Fields{
				"platform": msg.Platform,
				"command":  cmd.Name,
				"channel":  msg.Channel,
				"error":    err,
			}).Error("failed-to-send-static-reply")
		}
		return
	}

	fn, ok := d.registry.Handler(cmd.Handler)
	if !ok {
		// Registration validates handler references, so this only happens
		// when the registry was bypassed
		logger.WithFields(logrus.Fields{
			"command": cmd.Name,
			"handler": cmd.Handler,
		}).Error("command-references-missing-handler")
		d.sendFailure(msg)
		return
	}

	d.runAction(ctx, fn, msg, cmd.Name)
}

// runAction executes one workflow step under the per-key session lock.
// A panic or error inside the handler is caught here, logged with context,
// and converted into a generic failure reply.
func (d *Dispatcher) runAction(ctx context.Context, fn ActionFunc, msg bot.Incoming, name string) {
	release := d.sessions.Acquire(msg.Platform, msg.UserID)
	defer release()

	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"platform": msg.Platform,
				"user":     msg.UserID,
				"action":   name,
				"panic":    r,
			}).Error("action-handler-panic-recovered")
			d.sendFailure(msg)
		}
	}()

	if err := fn(ctx, msg, d); err != nil {
		logger.WithFields(logrus.Fields{
			"platform": msg.Platform,
			"user":     msg.UserID,
			"action":   name,
			"error":    err,
		}).Error("action-handler-failed")
		d.sendFailure(msg)
	}
}

func (d *Dispatcher) sendFailure(msg bot.Incoming) {
	if err := d.Reply(msg.Platform, msg.Channel, genericFailureReply); err != nil {
		logger.WithFields(logrus.Fields{
			"platform": msg.Platform,
			"channel":  msg.Channel,
			"error":    err,
		}).Error("failed-to-send-failure-reply")
	}
}
