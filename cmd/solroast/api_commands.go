package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"
)

// roastCommand requests a roast from a running server.
func roastCommand() *cli.Command {
	return &cli.Command{
		Name:      "roast",
		Usage:     "Request a roast for a wallet from the server",
		ArgsUsage: "<wallet>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "persona",
				Usage:   "Roast persona (degen, gordon, shakespeare, drill_sergeant)",
				Aliases: []string{"p"},
				Value:   "degen",
			},
			&cli.StringFlag{
				Name:    "jq",
				Usage:   "Apply a jq filter to the output",
				Aliases: []string{"q"},
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}

			payload, err := json.Marshal(map[string]string{
				"wallet":  c.Args().Get(0),
				"persona": c.String("persona"),
			})
			if err != nil {
				return err
			}

			// Cold roasts run a full analysis plus an LLM call.
			client := &http.Client{Timeout: 3 * time.Minute}
			resp, err := client.Post(c.String("server-url")+"/api/v1/roast", "application/json", bytes.NewReader(payload))
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			return printAPIResponse(resp, c.String("jq"))
		},
	}
}

// recentCommand lists recent roasts from the server.
func recentCommand() *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "List recent roasts",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of roasts to list",
				Value: 20,
			},
			&cli.StringFlag{
				Name:    "jq",
				Usage:   "Apply a jq filter to the output",
				Aliases: []string{"q"},
			},
		},
		Action: func(c *cli.Context) error {
			url := fmt.Sprintf("%s/api/v1/roasts/recent?limit=%d", c.String("server-url"), c.Int("limit"))
			resp, err := http.Get(url)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			return printAPIResponse(resp, c.String("jq"))
		},
	}
}

// statsCommand fetches service-wide stats.
func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show service-wide roast stats",
		Action: func(c *cli.Context) error {
			resp, err := http.Get(c.String("server-url") + "/api/v1/stats")
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			return printAPIResponse(resp, "")
		},
	}
}

// healthCommand checks whether the server is up.
func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Action: func(c *cli.Context) error {
			resp, err := http.Get(c.String("server-url") + "/health")
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
			}
			fmt.Println("OK")
			return nil
		},
	}
}

// printAPIResponse decodes a JSON API response and prints it, passing
// error bodies through with the status code.
func printAPIResponse(resp *http.Response, jqFilter string) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return printJSON(decoded, jqFilter)
}
