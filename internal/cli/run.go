package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCmd returns the long-running service command.
func RunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler and refresh the status every run period",
		Long: `Start the service. A cron tick checks whether the run period has
elapsed since the last attempt and, if so, runs one cycle:
fetch notifications, estimate the backlog, publish the status and ping the
webhook. Stops on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, _, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Run(ctx)
		},
	}
}

// OnceCmd returns the command that runs a single cycle immediately.
func OnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run one cycle now, ignoring the run period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd.Context(), false)
		},
	}
}

// EstimateCmd returns the dry-run command.
func EstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the backlog and print the status without publishing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd.Context(), true)
		},
	}
}

func runSingle(ctx context.Context, dryRun bool) error {
	application, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := application.RunOnce(ctx, dryRun)
	if err != nil {
		fmt.Printf("%s %v\n", color.New(color.FgRed).Sprint("FAILED"), err)
		return err
	}
	if report.Skipped {
		fmt.Println("API token is missing or malformed; nothing to do.")
		fmt.Println("Run `backlogstatus config set-token <token>` to configure one.")
		return nil
	}

	fmt.Printf("Notifications: %d\n", report.Notifications)
	fmt.Printf("Estimate:      %.1f days\n", report.Estimate.Days)
	fmt.Printf("Status:        %s\n", formatStatus(report.Status))
	if report.Published {
		fmt.Printf("%s as %s\n", color.New(color.FgGreen).Sprint("Published"), report.Username)
	}
	return nil
}

// LastCmd returns the command that shows the last recorded run.
func LastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the outcome of the last scheduled or manual run",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			result, ok, err := application.LastResult(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No run recorded yet.")
				return nil
			}

			fmt.Printf("At:     %s\n", result.At.Local().Format("2006-01-02 15:04:05"))
			switch {
			case result.Error != "":
				fmt.Printf("Result: %s %s\n", color.New(color.FgRed).Sprint("FAILED"), result.Error)
			case result.Skipped:
				fmt.Printf("Result: %s (no valid API token)\n", color.New(color.FgYellow).Sprint("SKIPPED"))
			default:
				fmt.Printf("Result: %s\n", color.New(color.FgGreen).Sprint("OK"))
				fmt.Printf("Status: :%s: %s\n", result.Icon, result.Message)
				fmt.Printf("Days:   %.1f from %d notifications\n", result.Days, result.Notifications)
			}
			return nil
		},
	}
}
