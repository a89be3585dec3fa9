package cli

import (
	"github.com/spf13/cobra"

	"github.com/deskbothq/deskbot/internal/config"
)

// Version is stamped by the release build; "dev" otherwise.
var Version = "dev"

// Shared CLI flags (used across multiple command files)
var (
	cfgFile   string
	paramsArg string
	verbose   bool
)

// ServerConfig holds the loaded server configuration (set by main)
var ServerConfig *config.Config

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd(c *config.Config) *cobra.Command {
	ServerConfig = c

	rootCmd := &cobra.Command{
		Use:   "deskbot",
		Short: "Deskbot - local desktop automation bot",
		Long: `Deskbot runs a local HTTP bridge between a chat UI, an AI agent,
and OS-level mouse/keyboard automation.

Just type 'deskbot' to start the server.`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: platform data directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(StatusCmd())
	rootCmd.AddCommand(SendCmd())
	rootCmd.AddCommand(HistoryCmd())
	rootCmd.AddCommand(DoCmd())
	rootCmd.AddCommand(ActionsCmd())

	return rootCmd
}
