package failreport

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	// ConsoleWidth is the width of a console report.
	ConsoleWidth = 78
	// consoleWrap is the body width; continuation lines are indented two
	// columns.
	consoleWrap = ConsoleWidth - 2
)

// UnknownFile stands in for frames without a source position.
const UnknownFile = "{unknown}"

// RenderConsole returns the plain-text report of f.
func RenderConsole(f *Failure) string {
	out, _ := safely(func() (string, error) { return renderConsole(f), nil })
	return out
}

func renderConsole(f *Failure) string {
	c := ClassifyFailure(f)
	var sb strings.Builder

	header := c.Label()
	if f.Kind() != KindAssertion {
		header = "Uncaught " + Compress(f.Type().Name)
	}
	header += fmt.Sprintf(" <%s:%d>", baseName(f.File()), f.Line())

	sb.WriteString("\n ")
	sb.WriteString(strings.Join(wrap(header, consoleWrap), "\n "))
	sb.WriteString("\n\n  ")
	sb.WriteString(strings.Join(wrap(c.Body, consoleWrap), "\n  "))
	sb.WriteString("\n\n Stack Trace:\n\n")

	for i, fr := range f.Trace() {
		sb.WriteString(fmt.Sprintf("%-6s", fmt.Sprintf("  %d. ", i+1)))
		sb.WriteString(fr.ShortSignature())
		if fr.Function != ClosureMarker {
			sb.WriteString("()")
		}
		file := baseName(fr.File)
		if file == "" {
			file = UnknownFile
		}
		fmt.Fprintf(&sb, " <%s:%d>\n", file, fr.Line)
	}
	return sb.String()
}

// wrap breaks s at spaces into lines of at most width display columns.
// Words wider than a line are cut.
func wrap(s string, width int) []string {
	if s == "" {
		return []string{""}
	}
	var (
		lines []string
		cur   strings.Builder
		curW  int
	)
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curW = 0
	}
	for _, word := range strings.Split(s, " ") {
		ww := runewidth.StringWidth(word)
		if curW > 0 && curW+1+ww > width {
			flush()
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		for ww > width-curW {
			head := runewidth.Truncate(word, width-curW, "")
			if head == "" {
				// a single rune wider than the remaining space
				if curW > 0 {
					flush()
					continue
				}
				r := []rune(word)
				head = string(r[0])
			}
			cur.WriteString(head)
			flush()
			word = word[len(head):]
			ww = runewidth.StringWidth(word)
		}
		cur.WriteString(word)
		curW += ww
	}
	flush()
	return lines
}
