package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/roster/internal/cli"
	"github.com/aretw0/roster/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Roster manages a remote user collection",
	Long: `Roster keeps a local view of a remote user collection: fetch, sort, add,
edit and delete users through validated forms, from the terminal, over HTTP
or as MCP tools.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default $ROSTER_CONFIG_FILE or ./roster.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "Base URL of the user collection (overrides config)")
}

// loadConfig reads the config named by --config and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		cfg.Resource.BaseURL = baseURL
	}
	return cfg, nil
}

// app is what every engine-backed command starts from.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	*cli.Runtime
}

// loadApp builds the engine from config. Logs go to stderr.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	rt, err := cli.NewRuntime(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, Runtime: rt}, nil
}
