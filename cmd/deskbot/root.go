package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/config"
	"github.com/deskbothq/deskbot/internal/server"
)

// ServeCmd creates the serve command
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the local bot server",
		Long:  `Start the deskbot HTTP server on the configured loopback port.`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

// runServe starts the server and blocks until Ctrl+C
func runServe() {
	c := *ServerConfig

	// An explicit --config wins over the data-directory default
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
		c = loaded
	}

	if verbose {
		c.Log.Level = "debug"
	}
	logx.MustSetup(logx.LogConf{Mode: "console", Level: c.Log.Level, Encoding: "plain"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := server.Run(ctx, c, server.ServerOptions{Version: Version}); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
