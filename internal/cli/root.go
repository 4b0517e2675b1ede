package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var err error
	cfg, err = DefaultConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
		cfg = &Config{ServerURL: "http://localhost:8080", Output: "text"}
	}

	rootCmd := &cobra.Command{
		Use:   "chesspie",
		Short: "CLI tool for the chesspie game API",
		Long: `chesspie is a CLI tool for the chesspie chess-variant server.

It drives games over the JSON API, streams live game events, manages the
custom piece library, and can replay a game offline without a server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Output != "text" && cfg.Output != "json" {
				return fmt.Errorf("invalid output format %q: must be text or json", cfg.Output)
			}
			var logOut io.Writer
			if cfg.Verbose {
				logOut = cmd.ErrOrStderr()
			}
			client = NewClient(cfg.ServerURL, logOut)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CHESSPIE_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: CHESSPIE_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Log requests to stderr")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newPiecesCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
