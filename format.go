// format.go - fmt.Formatter for failures.
//
//	%s, %v  → Error()
//	%q      → quoted Error()
//	%+v     → console report, followed by each cause's console report
package failreport

import (
	"fmt"
	"io"
)

func (f *Failure) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			formatVerbose(s, f)
			return
		}
		_, _ = io.WriteString(s, f.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", f.Error())
	default:
		_, _ = io.WriteString(s, f.Error())
	}
}

func formatVerbose(w io.Writer, f *Failure) {
	for i, c := range Chain(f) {
		if i > 0 {
			_, _ = io.WriteString(w, "\n Caused by:\n")
		}
		_, _ = io.WriteString(w, RenderConsole(c))
	}
	if f.wrapped != nil && f.cause == nil {
		_, _ = fmt.Fprintf(w, "\n Caused by: %v\n", f.wrapped)
	}
}
