package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keepmind9/webwatch/internal/bot"
	"github.com/keepmind9/webwatch/internal/core"
	"github.com/keepmind9/webwatch/internal/logger"
	"github.com/keepmind9/webwatch/internal/monitor"
	"github.com/keepmind9/webwatch/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start webwatch main process",
		Long:  "Start webwatch main process, listen to bot messages and dispatch to the website monitor commands",
		Run: func(cmd *cobra.Command, args []string) {
			// Load configuration
			config, err := core.LoadConfig(configFile)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}

			fmt.Printf("Starting webwatch with config: %s\n", configFile)
			fmt.Printf("Storage path: %s\n", config.Storage.Path)

			// Initialize logger
			logConfig := logger.Config{
				Level:        config.Logging.Level,
				File:         config.Logging.File,
				MaxSize:      config.Logging.MaxSize,
				MaxBackups:   config.Logging.MaxBackups,
				MaxAge:       config.Logging.MaxAge,
				Compress:     config.Logging.Compress,
				EnableStdout: config.Logging.EnableStdout,
			}
			if err := logger.InitLogger(logConfig); err != nil {
				log.Fatalf("Failed to initialize logger: %v", err)
			}

			logger.WithFields(logrus.Fields{
				"config_file": configFile,
				"log_level":   config.Logging.Level,
				"log_file":    config.Logging.File,
			}).Info("Logger initialized")

			// Open website storage
			store, err := storage.Open(config.Storage.Path)
			if err != nil {
				log.Fatalf("Failed to open website storage: %v", err)
			}
			defer store.Close()

			// Register the website monitor workflow
			registry := core.NewRegistry()
			workflow := monitor.New(store, config.Monitor.MaxWebsitesPerUser)
			if err := workflow.Register(registry); err != nil {
				log.Fatalf("Failed to register commands: %v", err)
			}

			dispatcher, err := core.NewDispatcher(registry, core.NewSessionStore(), workflow.HandleUnknown)
			if err != nil {
				log.Fatalf("Failed to create dispatcher: %v", err)
			}

			// Create engine
			engine := core.NewEngine(config, dispatcher)

			// Register bot adapters
			for botType, botConfig := range config.Bots {
				if !botConfig.Enabled {
					log.Printf("Bot %s is disabled, skipping", botType)
					continue
				}

				switch botType {
				case "discord":
					engine.RegisterBotAdapter(botType, bot.NewDiscordBot(botConfig.Token, botConfig.ChannelID))
					log.Printf("Registered %s bot adapter", botType)

				case "telegram":
					engine.RegisterBotAdapter(botType, bot.NewTelegramBot(botConfig.Token))
					log.Printf("Registered %s bot adapter (long polling)", botType)

				case "feishu":
					feishuBot := bot.NewFeishuBot(botConfig.AppID, botConfig.AppSecret)
					// Set optional encryption fields if provided
					if botConfig.EncryptKey != "" {
						feishuBot.EncryptKey = botConfig.EncryptKey
					}
					if botConfig.VerificationToken != "" {
						feishuBot.VerificationToken = botConfig.VerificationToken
					}
					engine.RegisterBotAdapter(botType, feishuBot)
					log.Printf("Registered %s bot adapter (WebSocket long connection)", botType)

				case "dingtalk":
					engine.RegisterBotAdapter(botType, bot.NewDingTalkBot(botConfig.ClientID, botConfig.ClientSecret))
					log.Printf("Registered %s bot adapter (WebSocket long connection)", botType)

				default:
					log.Printf("Warning: Bot type '%s' not implemented yet", botType)
				}
			}

			// Setup signal handling for graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			// Start engine in a goroutine
			engineErrChan := make(chan error, 1)
			go func() {
				fmt.Println("\nwebwatch engine starting...")
				fmt.Println("Press Ctrl+C to stop")
				engineErrChan <- engine.Run()
			}()

			// Wait for signal or engine error
			select {
			case sig := <-sigChan:
				log.Printf("\nReceived signal: %v, shutting down gracefully...", sig)
				if err := engine.Stop(); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			case err := <-engineErrChan:
				if err != nil {
					log.Fatalf("Engine error: %v", err)
				}
			}

			log.Println("webwatch stopped")
		},
	}
)

func init() {
	startCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
}
