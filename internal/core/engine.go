package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/keepmind9/webwatch/internal/bot"
	"github.com/keepmind9/webwatch/internal/logger"
	"github.com/sirupsen/logrus"
)

// Engine owns the platform adapters and their lifecycle. Each adapter
// delivers events on its own goroutines straight into the dispatcher;
// there is no central funnel, so platforms never block each other.
type Engine struct {
	config     *Config
	dispatcher *Dispatcher

	mu       sync.Mutex
	adapters map[string]bot.BotAdapter

	ctx    context.Context
	cancel context.CancelFunc
}

// NewEngine creates a new Engine instance
func NewEngine(config *Config, dispatcher *Dispatcher) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		config:     config,
		dispatcher: dispatcher,
		adapters:   make(map[string]bot.BotAdapter),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// RegisterBotAdapter registers a bot adapter for a platform. The adapter is
// also registered with the dispatcher so replies can be routed back.
func (e *Engine) RegisterBotAdapter(platform string, adapter bot.BotAdapter) {
	e.mu.Lock()
	e.adapters[platform] = adapter
	e.mu.Unlock()

	e.dispatcher.RegisterAdapter(platform, adapter)
}

// Run starts all enabled bots and blocks until Stop is called or the
// engine context is cancelled. A bot that fails to start does not stop
// the other platforms.
func (e *Engine) Run() error {
	logger.Info("starting-webwatch-engine")

	started := 0
	for botType, botConfig := range e.config.Bots {
		if !botConfig.Enabled {
			continue
		}

		e.mu.Lock()
		adapter, exists := e.adapters[botType]
		e.mu.Unlock()
		if !exists {
			logger.WithField("bot_type", botType).Warn("bot-adapter-not-registered")
			continue
		}

		started++
		logger.WithField("bot_type", botType).Info("starting-bot")
		go func(bt string, ba bot.BotAdapter) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(logrus.Fields{
						"bot_type": bt,
						"panic":    r,
					}).Error("bot-start-panic-recovered")
				}
			}()
			if err := ba.Start(e.handleIncoming); err != nil {
				logger.WithFields(logrus.Fields{
					"bot_type": bt,
					"error":    err,
				}).Error("failed-to-start-bot")
			}
		}(botType, adapter)
	}

	if started == 0 {
		return fmt.Errorf("no bot adapters available to start")
	}

	<-e.ctx.Done()
	logger.Info("engine-shutting-down")
	return nil
}

// handleIncoming is the callback every adapter delivers normalized events to
func (e *Engine) handleIncoming(msg bot.Incoming) {
	e.dispatcher.Handle(e.ctx, msg)
}

// Stop stops all adapters and releases the engine
func (e *Engine) Stop() error {
	e.cancel()

	e.mu.Lock()
	adapters := make(map[string]bot.BotAdapter, len(e.adapters))
	for platform, adapter := range e.adapters {
		adapters[platform] = adapter
	}
	e.mu.Unlock()

	for platform, adapter := range adapters {
		if err := adapter.Stop(); err != nil {
			logger.WithFields(logrus.Fields{
				"bot_type": platform,
				"error":    err,
			}).Error("failed-to-stop-bot")
		}
	}

	logger.Info("engine-stopped")
	return nil
}
