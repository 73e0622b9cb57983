// Package tui holds the terminal presentation helpers used by the
// interactive console.
package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewHelpRenderer returns a function that renders help text (markdown)
// for the terminal using glamour. On renderer construction failure the
// returned function passes text through unchanged.
func NewHelpRenderer() func(string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(text string) string { return text }
	}
	return func(text string) string {
		out, err := r.Render(text)
		if err != nil {
			return text
		}
		return out
	}
}

// Prompt returns the console prompt, colored when the terminal
// supports it.
func Prompt(sessionID string) string {
	p := termenv.ColorProfile()
	return termenv.String(sessionID+"> ").Foreground(p.Color("#34d399")).Bold().String()
}

// Errorf formats an error line in red for the console.
func Errorf(format string, args ...any) string {
	p := termenv.ColorProfile()
	return termenv.String(fmt.Sprintf(format, args...)).Foreground(p.Color("#f87171")).String()
}
