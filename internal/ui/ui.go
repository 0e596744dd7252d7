// Package ui writes devctr's human-facing output. Styling is applied only
// when stdout is a terminal.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// UI writes progress to out and failures to errOut.
type UI struct {
	out      io.Writer
	errOut   io.Writer
	isTTY    bool
	renderer *lipgloss.Renderer
}

// New creates a UI. TTY detection is performed on out.
func New(out, errOut io.Writer) *UI {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(f.Fd())
	}
	return &UI{
		out:      out,
		errOut:   errOut,
		isTTY:    tty,
		renderer: lipgloss.NewRenderer(out),
	}
}

// IsTTY reports whether the output is a terminal.
func (u *UI) IsTTY() bool {
	return u.isTTY
}

// render applies style to s on a terminal and returns s unchanged otherwise.
func (u *UI) render(s string, style func(lipgloss.Style) lipgloss.Style) string {
	if !u.isTTY {
		return s
	}
	return style(u.renderer.NewStyle()).Render(s)
}

func bold(s lipgloss.Style) lipgloss.Style  { return s.Bold(true) }
func faint(s lipgloss.Style) lipgloss.Style { return s.Faint(true) }

func color(c string) func(lipgloss.Style) lipgloss.Style {
	return func(s lipgloss.Style) lipgloss.Style { return s.Foreground(lipgloss.Color(c)) }
}
