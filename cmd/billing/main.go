package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/cli/configcmd"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/cli/migrate"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "billing",
		Short:        "Subscription billing service",
		Long:         `billing runs the subscription API, reconciles recurring-payment webhooks and expires lapsed subscriptions.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		configcmd.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
