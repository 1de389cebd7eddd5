package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/roster/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the roster ASCII banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"                  _            ", "#818cf8"},
		{"  _ __ ___  ___ _| |_ ___ _ __ ", "#a78bfa"},
		{" | '__/ _ \\/ __|_   _/ _ \\ '__|", "#c084fc"},
		{" | | | (_) \\__ \\ | ||  __/ |   ", "#e879f9"},
		{" |_|  \\___/|___/ |_| \\___|_|   ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StatusLine summarizes the fetch status and the pending request error,
// colored for the current terminal.
func StatusLine(state *domain.State) string {
	p := termenv.ColorProfile()

	status := termenv.String(string(state.FetchStatus))
	switch state.FetchStatus {
	case domain.StatusOK:
		status = status.Foreground(p.Color("#22c55e"))
	case domain.StatusPending:
		status = status.Foreground(p.Color("#eab308"))
	case domain.StatusError:
		status = status.Foreground(p.Color("#ef4444")).Bold()
	}

	line := fmt.Sprintf("fetch: %s", status)
	if state.HasList() {
		line += fmt.Sprintf("  users: %d", len(state.List))
	}
	if state.UpdateTime != nil {
		line += fmt.Sprintf("  updated: %s", state.UpdateTime.Format("15:04:05"))
	}
	if state.RequestError != nil {
		msg := termenv.String(fmt.Sprintf("  error: %s", state.RequestError.Message)).Foreground(p.Color("#ef4444"))
		line += msg.String()
	}
	return line
}
