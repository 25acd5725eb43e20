package cmd

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/mxrlkn/murmur/internal/api"
	"github.com/mxrlkn/murmur/internal/config"
)

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Manage assistant personas",
	Long:  `Manage the assistant persona used for responses and filler announcements.`,
}

var listPersonasCmd = &cobra.Command{
	Use:   "list",
	Short: "List available personas",
	Run: func(cmd *cobra.Command, args []string) {
		client := personaClient()

		presets, err := client.PersonaPresets(context.Background())
		if err != nil {
			log.Fatalf("Failed to fetch personas: %v", err)
		}

		active := ""
		if current, err := client.Persona(context.Background()); err == nil {
			active = current.Name
		}

		for _, key := range sortedKeys(presets) {
			preset := presets[key]
			marker := ""
			if key == active {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", key, marker)
			if preset.Description != "" {
				fmt.Printf("    %s\n", preset.Description)
			}
		}
	},
}

var setPersonaCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Set the active persona",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := personaClient()

		presets, err := client.PersonaPresets(context.Background())
		if err != nil {
			log.Fatalf("Failed to fetch personas: %v", err)
		}

		var key string
		if len(args) == 1 {
			key = args[0]
			if _, exists := presets[key]; !exists {
				log.Fatalf("Persona '%s' does not exist", key)
			}
		} else {
			prompt := promptui.Select{
				Label: "Select persona",
				Items: sortedKeys(presets),
			}
			_, selected, err := prompt.Run()
			if err != nil {
				log.Fatalf("Selection cancelled: %v", err)
			}
			key = selected
		}

		if err := client.PersonaSet(context.Background(), key); err != nil {
			log.Fatalf("Failed to set persona: %v", err)
		}
		fmt.Printf("Persona set to '%s'\n", key)
	},
}

func personaClient() *api.Client {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return api.NewClientWithConfig(&api.ClientConfig{BaseURL: cfg.APIBaseURL})
}

func sortedKeys(presets map[string]api.PersonaPreset) []string {
	keys := make([]string, 0, len(presets))
	for key := range presets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	personaCmd.AddCommand(listPersonasCmd)
	personaCmd.AddCommand(setPersonaCmd)
}
