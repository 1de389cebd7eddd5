package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/roster/internal/cli"
	"github.com/aretw0/roster/pkg/adapters/memory"
	"github.com/aretw0/roster/pkg/adapters/mockapi"
	"github.com/spf13/cobra"
)

var mockAPICmd = &cobra.Command{
	Use:   "mock-api",
	Short: "Serve an in-memory user collection for local development",
	Long: `Serves GET/POST /data and GET/PATCH/DELETE /data/{id} from memory.
The collection starts from --seed (YAML or JSON) or a built-in sample.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := cli.NewLogger(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("port") {
			cfg.MockAPI.Port, _ = flags.GetInt("port")
		}
		if flags.Changed("seed") {
			cfg.MockAPI.SeedFile, _ = flags.GetString("seed")
		}
		if flags.Changed("fail") {
			cfg.MockAPI.Failures, _ = flags.GetInt("fail")
		}
		latency := time.Duration(cfg.MockAPI.LatencyMS) * time.Millisecond
		if flags.Changed("latency") {
			latency, _ = flags.GetDuration("latency")
		}

		seed := mockapi.DefaultSeed()
		if cfg.MockAPI.SeedFile != "" {
			if seed, err = mockapi.LoadSeed(cfg.MockAPI.SeedFile); err != nil {
				return err
			}
		}
		resource, err := memory.NewResource(seed...)
		if err != nil {
			return err
		}

		srv := mockapi.NewServer(resource,
			mockapi.WithLogger(logger),
			mockapi.WithLatency(latency),
			mockapi.WithListFailures(cfg.MockAPI.Failures),
		)

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		logger.Info("mock collection ready", "users", len(seed), "seed", cfg.MockAPI.SeedFile)
		return serveHTTP(ctx, fmt.Sprintf(":%d", cfg.MockAPI.Port), srv.Handler(), logger)
	},
}

func init() {
	rootCmd.AddCommand(mockAPICmd)
	mockAPICmd.Flags().IntP("port", "p", 3000, "Port to listen on (overrides config)")
	mockAPICmd.Flags().String("seed", "", "YAML or JSON file with the initial users")
	mockAPICmd.Flags().Duration("latency", 0, "Delay every response")
	mockAPICmd.Flags().Int("fail", 0, "Answer the first N list requests with 503")
}
