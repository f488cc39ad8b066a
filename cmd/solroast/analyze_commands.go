package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	"github.com/brojonat/solroast/service/analyzer"
	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/refdata"
	"github.com/brojonat/solroast/service/solana"
)

const (
	defaultTokenListURL = "https://token.jup.ag/strict"
	defaultPriceAPIURL  = "https://api.jup.ag/price/v2"
)

// analyzeCommand runs a wallet analysis directly against the upstream
// providers, without going through a server.
func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a wallet and print the result as JSON",
		ArgsUsage: "<wallet>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "jq",
				Usage:   "Apply a jq filter to the analysis output",
				Aliases: []string{"q"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Analysis timeout",
				Value: 90 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			wallet := c.Args().Get(0)

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError, // Only errors to stderr
			}))

			rpc := solana.NewRPCClient(c.String("solana-rpc-url"))
			solanaClient := solana.NewClient(rpc, logger, nil)
			heliusClient := helius.NewClient("https://api.helius.xyz", c.String("helius-api-key"), logger, nil)
			tokenList := refdata.NewTokenListCache(defaultTokenListURL, 6*time.Hour, logger, nil)
			priceClient := refdata.NewPriceClient(defaultPriceAPIURL, logger, nil)

			an := analyzer.New(solanaClient, heliusClient, tokenList, priceClient, analyzer.Options{
				Timeout: c.Duration("timeout"),
			}, logger, nil)

			result, err := an.Analyze(c.Context, wallet)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return printJSON(result, c.String("jq"))
		},
	}
}

// printJSON prints v as indented JSON, optionally filtered through a jq
// expression.
func printJSON(v interface{}, jqFilter string) error {
	if jqFilter == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	query, err := gojq.Parse(jqFilter)
	if err != nil {
		return fmt.Errorf("failed to parse jq filter %q: %w", jqFilter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq filter %q: %w", jqFilter, err)
	}

	// Round-trip through JSON so gojq sees plain maps and slices.
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	iter := code.Run(decoded)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			return fmt.Errorf("jq filter error: %w", err)
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
