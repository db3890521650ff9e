package failreport

import "strings"

// Reserved frame names recognized by Normalize.
const (
	// ClosureMarker identifies anonymous function bodies.
	ClosureMarker = "{closure}"
	// TriggerFunction is the function that manually raises a runtime error.
	TriggerFunction = "Trigger"
	// NoticeFunction is the notice entry point of the reporting subsystem.
	NoticeFunction = "Notice"
	// NoticeOwner is the enclosing type of NoticeFunction.
	NoticeOwner = "github.com/xgx-io/failreport/hook/Handler"
)

// Normalize trims the frames that belong to the failure handling machinery
// from raw, an innermost-first trace, and collapses anonymous function names.
// The result lists the failure site first and the outermost caller last.
//
// For KindRuntime traces that end in the notice entry point, the returned
// Location is the call site of that entry point; it replaces the failure's
// recorded origin. Otherwise the returned Location is nil.
func Normalize(raw Trace, kind Kind) (Trace, *Location) {
	trace := raw
	var origin *Location

	switch kind {
	case KindAssertion:
		// assertion evaluation + assertion dispatch
		trace = dropFirst(trace, 2)
	case KindRuntime:
		// conversion handler
		trace = dropFirst(trace, 1)
		if len(trace) > 0 && trace[0].Function == TriggerFunction {
			trace = dropFirst(trace, 1)
			if len(trace) > 0 && isNotice(trace[0]) {
				origin = &Location{File: trace[0].File, Line: trace[0].Line}
				trace = dropFirst(trace, 1)
			}
		}
	}

	out := make(Trace, len(trace))
	for i, fr := range trace {
		if strings.Contains(fr.Function, ClosureMarker) {
			fr.Function = ClosureMarker
		}
		out[i] = fr
	}
	return out, origin
}

func dropFirst(t Trace, n int) Trace {
	if len(t) <= n {
		return nil
	}
	return t[n:]
}

func isNotice(fr Frame) bool {
	return fr.Function == NoticeFunction && fr.Type != nil && fr.Type.String() == NoticeOwner
}
