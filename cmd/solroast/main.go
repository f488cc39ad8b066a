package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "solroast",
		Usage: "Solana wallet analyzer and roast service CLI",
		Description: `A command-line tool for analyzing Solana wallets and debugging the solroast service.

Use this CLI to run ad-hoc wallet analyses, request roasts from a running server,
and inspect service state.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			analyzeCommand(),
			roastCommand(),
			recentCommand(),
			statsCommand(),
			healthCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "Server URL for API commands",
				EnvVars: []string{"SERVER_URL"},
				Value:   "http://localhost:8080",
			},
			&cli.StringFlag{
				Name:    "solana-rpc-url",
				Usage:   "Solana JSON-RPC endpoint for local analysis",
				EnvVars: []string{"SOLANA_RPC_URL"},
				Value:   "https://api.mainnet-beta.solana.com",
			},
			&cli.StringFlag{
				Name:    "helius-api-key",
				Usage:   "Helius API key for enhanced history (optional)",
				EnvVars: []string{"HELIUS_API_KEY"},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
