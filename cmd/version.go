package cmd

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blinky-companion/sync-agent/internal/config"
)

func NewVersionCommand(cfg *config.Configuration) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the agent version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionLine(cfg.Agent.Version))
		},
	}
}

func versionLine(version string) string {
	return fmt.Sprintf("%s %s (%s/%s)",
		color.New(color.FgCyan, color.Bold).Sprint("sync-agent"),
		color.GreenString(version),
		runtime.GOOS, runtime.GOARCH,
	)
}

// banner is printed once on start so the mode is visible without reading logs.
func banner(cfg *config.Configuration) string {
	mode := color.YellowString(cfg.Server.ServerMode)
	if cfg.Server.ServerMode == "prod" {
		mode = color.GreenString(cfg.Server.ServerMode)
	}
	return fmt.Sprintf("%s listening on %s:%d mode=%s transport=%s",
		versionLine(cfg.Agent.Version), cfg.Server.Address, cfg.Server.HTTPPort, mode, cfg.Device.Transport)
}
