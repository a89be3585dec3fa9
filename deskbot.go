package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	cli "github.com/deskbothq/deskbot/cmd/deskbot"
	"github.com/deskbothq/deskbot/internal/config"
	"github.com/deskbothq/deskbot/internal/defaults"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Seed the data directory with a default config on first run
	cfgPath, err := defaults.EnsureDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize data directory: %v\n", err)
		os.Exit(1)
	}

	c, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	if err := cli.SetupRootCmd(&c).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
