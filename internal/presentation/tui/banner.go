package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the capstan ASCII banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   ___ __ _ _ __  ___| |_ __ _ _ __", "#818cf8"},
		{"  / __/ _` | '_ \\/ __| __/ _` | '_ \\", "#a78bfa"},
		{" | (_| (_| | |_) \\__ \\ || (_| | | | |", "#c084fc"},
		{"  \\___\\__,_| .__/|___/\\__\\__,_|_| |_|", "#e879f9"},
		{"           |_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", termenv.String("v"+strings.TrimSpace(version)).Faint())
}

// Success formats a run outcome line for a task that completed.
func Success(task string) string {
	p := termenv.ColorProfile()
	return termenv.String("✔ " + task).Foreground(p.Color("#22c55e")).String()
}

// Failure formats a run outcome line for a task that failed.
func Failure(task string, err error) string {
	p := termenv.ColorProfile()
	return termenv.String(fmt.Sprintf("✘ %s: %v", task, err)).Foreground(p.Color("#ef4444")).Bold().String()
}
