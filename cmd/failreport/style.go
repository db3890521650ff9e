package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	traceStyle  = lipgloss.NewStyle().Faint(true)
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// styleConsole highlights the header line and dims the trace heading of a
// console report written to a terminal. Other writers get the report as is.
func styleConsole(w io.Writer, report string) string {
	if !isTerminal(w) {
		return report
	}
	lines := strings.Split(report, "\n")
	for i, line := range lines {
		switch {
		case i == 1:
			lines[i] = headerStyle.Render(line)
		case line == " Stack Trace:":
			lines[i] = traceStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
