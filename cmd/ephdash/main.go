package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ephdash",
	Short: "Dashboard for per-user ephemeral environments",
	Long: `ephdash serves a dashboard where each user launches one ephemeral
environment from an allowlisted repo, branch and Tiltfile path, follows
its logs, and watches it count down to expiration.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
