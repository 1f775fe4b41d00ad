package main

import (
	"os"

	"github.com/spf13/cobra"

	"BacklogStatus/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "backlogstatus",
		Short: "Publish your notification backlog as your GitHub status",
		Long: `backlogstatus estimates how far behind you are on GitHub notifications
and sets your profile status (and busy flag) accordingly.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.OnceCmd())
	rootCmd.AddCommand(cli.EstimateCmd())
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.LastCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
