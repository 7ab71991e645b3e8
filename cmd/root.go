package cmd

import (
	"github.com/spf13/cobra"

	"github.com/blinky-companion/sync-agent/internal/config"
)

const envPrefix = "SYNC_AGENT"

func NewRootCommand() *cobra.Command {
	cfg := config.NewConfigurationWithOptionsAndDefaults()

	root := &cobra.Command{
		Use:           "sync-agent",
		Short:         "Companion agent that pushes Wi-Fi and clock settings to a Blinky device",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(NewRunCommand(cfg))
	root.AddCommand(NewVersionCommand(cfg))

	return root
}
