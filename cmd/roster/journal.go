package main

import (
	"github.com/aretw0/roster/internal/presentation/tui"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print recent dispatched actions",
	Long: `Prints the newest journal entries. Only a shared backend (redis) keeps
entries across processes; the memory journal starts empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Journal == nil {
			return domain.ErrJournalDisabled
		}
		if clear, _ := cmd.Flags().GetBool("clear"); clear {
			return a.Journal.Clear(cmd.Context())
		}

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := a.Engine.Journal(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return printMarkdown(cmd, tui.JournalMarkdown(entries))
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().IntP("limit", "n", 20, "Number of entries (0 for all)")
	journalCmd.Flags().Bool("clear", false, "Remove every entry")
}
