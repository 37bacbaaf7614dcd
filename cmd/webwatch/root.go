package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "webwatch",
	Short: "webwatch is a chat bot that monitors websites for its users",
	Long: `webwatch is a chat-command bot that runs simultaneously against multiple
messaging platforms (Discord, Telegram, Feishu, DingTalk). Users register
websites through short conversations and get notified when a domain is down.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}
