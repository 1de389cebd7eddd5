package main

import (
	"os"

	"github.com/aretw0/roster/internal/cli"
	"github.com/aretw0/roster/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console over the roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		interactive := cli.IsTerminal(os.Stdout)
		if interactive {
			tui.PrintBanner(out)
		}
		render, err := tui.NewRenderer(interactive)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		console := cli.NewConsole(a.Engine, out, render)
		if fetch, _ := cmd.Flags().GetBool("fetch"); fetch {
			_, _ = console.Execute(ctx, "fetch")
		}
		return cli.HandleExecutionError(console.Run(ctx, cmd.InOrStdin()))
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().Bool("fetch", true, "Fetch users when the console starts")
}
