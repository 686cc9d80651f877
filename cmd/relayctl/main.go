// Command relayctl is the gardenbell operator CLI.
//
// Usage:
//
//	relayctl poll --interval 30s --cycles 2
//	relayctl rarity tomato
//	relayctl send-test --token <device-token> --title "Hello"
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mossvale/gardenbell/internal/catalog"
	"github.com/mossvale/gardenbell/internal/config"
	"github.com/mossvale/gardenbell/internal/detect"
	"github.com/mossvale/gardenbell/internal/dispatch"
	"github.com/mossvale/gardenbell/internal/upstream"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "relayctl",
		Short: "gardenbell operator CLI",
	}

	root.AddCommand(pollCmd())
	root.AddCommand(rarityCmd())
	root.AddCommand(sendTestCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// poll command
// --------------------------------------------------------------------------

func pollCmd() *cobra.Command {
	var interval time.Duration
	var cycles int

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll the game API and print detected deltas (dry run, no pushes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamReqPerMin, logger)

			var prev catalog.Snapshot
			var prevW catalog.WeatherSnapshot
			for i := 0; i < cycles; i++ {
				if i > 0 {
					select {
					case <-time.After(interval):
					case <-ctx.Done():
						return nil
					}
				}

				cur, err := client.FetchCatalog(ctx)
				if err != nil {
					logger.Warn("catalog fetch failed", "error", err)
					continue
				}
				curW, err := client.FetchWeather(ctx)
				if err != nil {
					logger.Warn("weather fetch failed", "error", err)
					curW = catalog.WeatherSnapshot{}
				}

				for _, d := range detect.Restock(prev, cur) {
					fmt.Printf("item  %-20s %s  qty %d -> %d  (%s)\n",
						d.Key, d.Category, d.PreviousQty, d.CurrentQty, d.Rarity)
				}
				for _, d := range detect.WeatherChanges(prevW, curW) {
					state := "ended"
					if d.Active {
						state = "started"
					}
					fmt.Printf("weather  %-16s %s\n", d.ID, state)
				}
				prev, prevW = cur, curW
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "delay between cycles")
	cmd.Flags().IntVar(&cycles, "cycles", 2, "number of poll cycles to run")
	return cmd
}

// --------------------------------------------------------------------------
// rarity command
// --------------------------------------------------------------------------

func rarityCmd() *cobra.Command {
	var itemID string

	cmd := &cobra.Command{
		Use:   "rarity <item-key>",
		Short: "Resolve an item's rarity tier through the layered resolver",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			key := catalog.NormalizeKey(args[0])
			r := catalog.ResolveRarity(key, itemID, catalog.RarityUnknown)
			classified := catalog.Classified(key, itemID, catalog.RarityUnknown)
			fmt.Printf("%s: %s", key, r)
			if !classified {
				fmt.Print(" (unclassified, fail-open default)")
			}
			fmt.Println()
		},
	}

	cmd.Flags().StringVar(&itemID, "item-id", "", "upstream item id to check overrides against")
	return cmd
}

// --------------------------------------------------------------------------
// send-test command
// --------------------------------------------------------------------------

func sendTestCmd() *cobra.Command {
	var token, title, body string

	cmd := &cobra.Command{
		Use:   "send-test",
		Short: "Send a test push to one device token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			gateway := dispatch.NewFCMClient(cfg.FCMEndpoint, cfg.FCMServerKey, logger)
			if gateway == nil {
				return fmt.Errorf("FCM_SERVER_KEY is not set")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			res, err := gateway.Send(ctx, dispatch.Payload{
				Title:    title,
				Body:     body,
				Sound:    dispatch.DefaultSound,
				Badge:    1,
				ThreadID: "debug",
			}, token)
			if err != nil {
				return err
			}
			fmt.Printf("sent=%d failed=%d reason=%s\n", res.Sent, res.Failed, res.Reason)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "device token (required)")
	cmd.Flags().StringVar(&title, "title", "Gardenbell test", "notification title")
	cmd.Flags().StringVar(&body, "body", "Push delivery is working.", "notification body")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
