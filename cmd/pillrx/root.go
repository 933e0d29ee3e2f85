package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "pillrx [route]",
	Short: "Identify a pill from a photo and ask about it",
	Long: "PillRx walks through four steps: pick a photo, wait while it is identified,\n" +
		"choose a match, then chat about it. A route argument (/, /processing,\n" +
		"/results, /detail) is accepted but every launch starts at intake.",
	Args: cobra.MaximumNArgs(1),
	RunE: runApp,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "config file (default $PILLRX_CONFIG or ~/.config/pillrx/config.toml)")
	rootCmd.AddCommand(catalogCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
