package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"BacklogStatus/internal/config"
	"BacklogStatus/internal/domain"
	"BacklogStatus/internal/usecase"
)

// ConfigCmd returns the settings management command.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the stored token and webhook",
	}
	cmd.AddCommand(configShowCmd(), configSetTokenCmd(), configSetWebhookCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cfg, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			settings, err := usecase.NewSettingsSource(application.Store(), usecase.Settings{
				APIToken:   cfg.Status.APIToken,
				WebhookURL: cfg.Status.WebhookURL,
			}).Load(cmd.Context())
			if err != nil {
				return err
			}

			tokenState := color.New(color.FgGreen).Sprint("OK")
			if !(domain.Credentials{APIToken: settings.APIToken}).Valid() {
				tokenState = color.New(color.FgRed).Sprint("INVALID")
			}
			webhook := settings.WebhookURL
			if webhook == "" {
				webhook = color.New(color.FgYellow).Sprint("(not set)")
			}

			fmt.Printf("API token:  %s %s\n", maskToken(settings.APIToken), tokenState)
			fmt.Printf("Webhook:    %s\n", webhook)
			fmt.Printf("Run period: %s\n", cfg.Status.RunPeriod)
			fmt.Printf("Schedule:   %s (%s)\n", cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
			fmt.Printf("Identity:   %s\n", cfg.GitHub.Identity)
			return nil
		},
	}
}

func configSetTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token <token>",
		Short: "Store the personal access token used to read notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			if !(domain.Credentials{APIToken: token}).Valid() {
				return fmt.Errorf("token must be %d characters, got %d", domain.APITokenLength, len(token))
			}

			application, _, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Store().Set(cmd.Context(), usecase.KeyToken, token); err != nil {
				return err
			}
			fmt.Printf("%s token %s\n", color.New(color.FgGreen).Sprint("Saved"), maskToken(token))
			return nil
		},
	}
}

func configSetWebhookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-webhook <url>",
		Short: "Store the URL pinged after each successful publish (empty to clear)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			webhook := args[0]
			if err := config.ValidateWebhookURL(webhook); err != nil {
				return err
			}

			application, _, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Store().Set(cmd.Context(), usecase.KeyWebhook, webhook); err != nil {
				return err
			}
			if webhook == "" {
				fmt.Println("Webhook cleared")
			} else {
				fmt.Printf("%s webhook %s\n", color.New(color.FgGreen).Sprint("Saved"), webhook)
			}
			return nil
		},
	}
}
