package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the eventmodel banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Timeline colors: events, commands, views
	lines := []termenv.Style{
		termenv.String("  ___              _                   _     _ ").Foreground(p.Color("#ffb74d")),
		termenv.String(" | __|_ _____ _ _ | |_ _ __  ___  __| |___| |").Foreground(p.Color("#ff8a65")),
		termenv.String(" | _|\\ V / -_) ' \\|  _| '  \\/ _ \\/ _` / -_) |").Foreground(p.Color("#64b5f6")),
		termenv.String(" |___|\\_/\\___|_||_|\\__|_|_|_\\___/\\__,_\\___|_|").Foreground(p.Color("#81c784")),
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w, termenv.String("  "+version).Faint())
	fmt.Fprintln(w)
}

// Notice renders a dim system message such as "watching models/".
func Notice(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String(msg).Foreground(p.Color("#9e9e9e")).Italic().String()
}
