package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/roster/pkg/ports"
)

var diffParts = []string{"list", "status", "forms", "error"}

// JournalMarkdown renders journal entries oldest first, with the state parts
// each dispatch changed.
func JournalMarkdown(entries []ports.JournalEntry) string {
	if len(entries) == 0 {
		return "_The journal is empty._\n"
	}

	var b strings.Builder
	b.WriteString("| Seq | Time | Action | Changed |\n")
	b.WriteString("|---:|---|---|---|\n")
	for _, e := range entries {
		changed := "-"
		if e.Diff != nil {
			var parts []string
			for _, p := range diffParts {
				if e.Diff.Touches(p) {
					parts = append(parts, p)
				}
			}
			changed = strings.Join(parts, ", ")
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", e.Seq, e.Time.Format("2006-01-02 15:04:05"), e.Action, changed)
	}
	return b.String()
}
