package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mxrlkn/murmur/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "murmur",
	Short: "A voice-friendly terminal assistant client",
	Long:  `Murmur is a terminal client for the assistant daemon: send commands, confirm actions, and link provider accounts.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: run the chat application
		application, err := app.NewApplication()
		if err != nil {
			log.Fatalf("Failed to create application: %v", err)
		}
		defer application.Stop()

		if err := application.Start(); err != nil {
			log.Fatalf("Application error: %v", err)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(personaCmd)
	rootCmd.AddCommand(connectCmd)
}
