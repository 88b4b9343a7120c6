package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#8BC34A")
	info    = lipgloss.Color("#2196F3")
	warning = lipgloss.Color("#FFC107")
	danger  = lipgloss.Color("#e53935")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	keyStyle   = lipgloss.NewStyle().Foreground(info)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(warning)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(danger)
)

func title(w io.Writer, text string) {
	fmt.Fprintln(w, titleStyle.Render(text))
}

// field prints an aligned "key: value" line.
func field(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s %s\n", keyStyle.Render(fmt.Sprintf("%-15s", key+":")), value)
}

func section(w io.Writer, name string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(name))
	for _, l := range lines {
		fmt.Fprintf(w, "  %s\n", l)
	}
}
