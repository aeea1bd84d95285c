package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wikiexplorer/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wikiexplorer",
		Short: "Explore Wikipedia one summarized article at a time.",
		Long: `wikiexplorer serves random and related Wikipedia articles with
per-section summaries. A small prefetch buffer keeps the next article ready
so that moving on is instant.

Run 'wikiexplorer tui' to browse interactively or 'wikiexplorer serve'
to expose the JSON API.`,
		SilenceUsage: true,
	}

	// Initialize configuration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wikiexplorer.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewTUICmd())
	rootCmd.AddCommand(NewNextCmd())
	rootCmd.AddCommand(NewTopicsCmd())
	rootCmd.AddCommand(NewCollectionsCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if config.IsDebugMode() && config.Get().App.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", config.Get().App.ConfigFile)
	}
}
