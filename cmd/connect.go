package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/mxrlkn/murmur/internal/core"
	"github.com/mxrlkn/murmur/internal/models"
)

var (
	connectProvider string
	connectClientID string
	connectSecret   string
)

var connectCmd = &cobra.Command{
	Use:   "connect [target]",
	Short: "Link a provider account",
	Long:  `Link a provider account (for example a calendar or email provider) without starting the full chat application.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := args[0]
		client := personaClient()

		provider := connectProvider
		if provider == "" {
			providers := core.ProvidersFor(target)
			if len(providers) == 0 {
				log.Fatalf("No providers known for target '%s'", target)
			}
			prompt := promptui.Select{
				Label: "Select provider",
				Items: providers,
			}
			_, selected, err := prompt.Run()
			if err != nil {
				log.Fatalf("Selection cancelled: %v", err)
			}
			provider = selected
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan models.ConnectionView, 8)
		manager := core.NewConnectionManager(ctx, client, core.ConnectionSinks{
			Update: func(view models.ConnectionView) {
				fmt.Printf("[%s] %s\n", view.Status, view.Note)
				if view.Status == "connected" || view.Status == "error" {
					done <- view
				}
			},
			OpenURL: func(url string) {
				fmt.Printf("Open this link to authorize: %s\n", url)
			},
		})

		manager.SelectProvider(target, provider)
		if core.RequiresAuthorization(target, provider) {
			manager.SetCredentials(target, core.Credentials{
				ClientID:     connectClientID,
				ClientSecret: connectSecret,
			})
		}

		go manager.Start(target)

		select {
		case view := <-done:
			if view.Status == "error" {
				log.Fatalf("Connection failed: %s", view.Note)
			}
			fmt.Printf("%s is connected via %s\n", target, provider)
		case <-time.After(5 * time.Minute):
			manager.StopAll()
			log.Fatal("Timed out waiting for authorization")
		}
	},
}

func init() {
	connectCmd.Flags().StringVar(&connectProvider, "provider", "", "provider to link (prompted if omitted)")
	connectCmd.Flags().StringVar(&connectClientID, "client-id", "", "OAuth client id")
	connectCmd.Flags().StringVar(&connectSecret, "client-secret", "", "OAuth client secret")
}
