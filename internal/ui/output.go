package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header prints a section header: "==> msg" in bold blue.
func (u *UI) Header(msg string) {
	u.println(u.render("==> "+msg, func(s lipgloss.Style) lipgloss.Style {
		return s.Bold(true).Foreground(lipgloss.Color("4"))
	}))
}

// Success prints "  ✓ msg" in green, or "  ok msg" when not a terminal.
func (u *UI) Success(msg string) {
	if !u.isTTY {
		u.println("  ok " + msg)
		return
	}
	u.println(u.render("  ✓ "+msg, color("2")))
}

// Keyval prints "  key  value" with a bold fixed-width key.
func (u *UI) Keyval(key, value string) {
	u.printf("  %s%s\n", u.render(fmt.Sprintf("%-14s", key), bold), value)
}

// Dim prints faint text.
func (u *UI) Dim(msg string) {
	u.println(u.render(msg, faint))
}

// Error reports a failed operation on errOut:
//
//	Error <verb>:
//		- <msg>
//
// Only the first line is styled so multi-line messages are kept intact.
func (u *UI) Error(verb, msg string) {
	head := u.render("Error "+verb+":", color("1"))
	_, _ = fmt.Fprintf(u.errOut, "%s\n\t- %s\n", head, msg)
}

// Frame prints a faint "  --- title ---" separator, runs fn, then closes
// the frame. Output produced by fn appears between the separators.
func (u *UI) Frame(title string, fn func() error) error {
	u.println(u.render("  --- "+title+" ---", faint))
	err := fn()
	u.println(u.render("  ---", faint))
	return err
}

// Table prints a column-aligned table with bold headers.
func (u *UI) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	u.println(u.render(formatRow(headers, widths), bold))
	for _, row := range rows {
		u.println(formatRow(row, widths))
	}
}

func formatRow(cells []string, widths []int) string {
	var line strings.Builder
	for i, cell := range cells {
		if i > 0 {
			line.WriteString("  ")
		}
		if i < len(widths) && i < len(cells)-1 {
			fmt.Fprintf(&line, "%-*s", widths[i], cell)
		} else {
			line.WriteString(cell)
		}
	}
	return line.String()
}

func (u *UI) println(msg string) {
	_, _ = fmt.Fprintln(u.out, msg)
}

func (u *UI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(u.out, format, args...)
}
