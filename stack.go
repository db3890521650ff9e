// stack.go - stack capture for failreport.
//
// Frames are resolved with runtime.Callers + runtime.CallersFrames so inlined
// calls expand correctly. Runtime-internal frames (runtime.gopanic,
// runtime.sigpanic, runtime.main, ...) are dropped at capture time.
//
// Frame positions are call sites: File and Line of a frame locate the call
// that entered Function, so the frame list reads "Function was called from
// File:Line". The failure origin is the position inside the innermost frame.
package failreport

import (
	"runtime"
	"strings"
)

// Call operators, display-only.
const (
	// OpFunc joins a package and a package-level function.
	OpFunc = "."
	// OpValue joins a type and a value-receiver method.
	OpValue = "."
	// OpPointer joins a type and a pointer-receiver method.
	OpPointer = "->"
)

// Frame is one call-stack entry.
type Frame struct {
	Type     *Name   // enclosing type or package; nil when unknown
	Op       string  // call operator between Type and Function
	Function string  // function name; anonymous bodies contain ClosureMarker
	File     string  // file of the call site; empty when unknown
	Line     int     // line of the call site; 0 when unknown
	Args     []Value // arguments snapshotted at capture time
}

// Signature returns the uncompressed "<type><op><function>" form.
func (fr Frame) Signature() string {
	var sb strings.Builder
	if fr.Type != nil {
		sb.WriteString(fr.Type.String())
		sb.WriteString(fr.Op)
	}
	sb.WriteString(fr.Function)
	return sb.String()
}

// ShortSignature is Signature with the type compressed.
func (fr Frame) ShortSignature() string {
	var sb strings.Builder
	if fr.Type != nil {
		sb.WriteString(Compress(*fr.Type))
		sb.WriteString(fr.Op)
	}
	sb.WriteString(fr.Function)
	return sb.String()
}

// Trace is a list of frames, innermost (failure site) first.
type Trace []Frame

// clone copies the frame list; argument slices are shared since values are
// immutable snapshots.
func (t Trace) clone() Trace {
	if t == nil {
		return nil
	}
	out := make(Trace, len(t))
	copy(out, t)
	return out
}

// Reverse returns t in opposite order. Use it to bring foreign traces that
// list the outermost caller first into capture order.
func Reverse(t Trace) Trace {
	out := make(Trace, len(t))
	for i, fr := range t {
		out[len(t)-1-i] = fr
	}
	return out
}

// Location is a source position.
type Location struct {
	File string
	Line int
}

const (
	// defaultMaxDepth bounds captures on exceptional paths.
	defaultMaxDepth = 64
)

// Capture records the calling goroutine's stack. skip=0 makes the caller of
// Capture the first frame. The returned Location is the position inside
// that first frame.
func Capture(skip int) (Trace, Location) {
	return captureTrace(skip+1, defaultMaxDepth)
}

// captureTrace resolves the stack and converts it to call-site frames.
//
// Skip accounting: +1 for runtime.Callers, +1 for captureFrames, +1 for
// captureTrace, so skip=0 starts at the caller of captureTrace.
func captureTrace(skip, maxDepth int) (Trace, Location) {
	frs := captureFrames(skip+1, maxDepth)
	return toTrace(frs)
}

// captureFrames captures up to maxDepth frames, skipping 'skip' initial
// frames and every runtime-internal frame.
func captureFrames(skip, maxDepth int) []runtime.Frame {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	// +1 for runtime.Callers itself, +1 for captureFrames.
	pc := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return nil
	}
	pc = pc[:n]

	frames := runtime.CallersFrames(pc)
	out := make([]runtime.Frame, 0, n)
	for {
		fr, more := frames.Next()
		if !isRuntimeFrame(fr.Function) {
			out = append(out, fr)
		}
		if !more {
			break
		}
	}
	return out
}

// isRuntimeFrame reports frames of the runtime and compiler-generated defer
// wrappers; neither is part of the program's own call chain.
func isRuntimeFrame(fn string) bool {
	return strings.HasPrefix(fn, "runtime.") ||
		strings.HasPrefix(fn, "internal/runtime/") ||
		strings.Contains(fn, ".deferwrap")
}

// toTrace shifts positions so each frame carries the call site of its
// function: frame i takes the position recorded in frame i+1.
func toTrace(frs []runtime.Frame) (Trace, Location) {
	if len(frs) == 0 {
		return nil, Location{}
	}
	out := make(Trace, len(frs))
	for i, fr := range frs {
		typ, op, fn := splitFunction(fr.Function)
		out[i] = Frame{Type: typ, Op: op, Function: fn}
		if i+1 < len(frs) {
			out[i].File = frs[i+1].File
			out[i].Line = frs[i+1].Line
		}
	}
	return out, Location{File: frs[0].File, Line: frs[0].Line}
}

// splitFunction breaks a fully-qualified Go function name into enclosing
// type, call operator and function:
//
//	github.com/acme/pay.Charge            -> github.com/acme/pay . Charge
//	github.com/acme/pay.(*Card).Validate  -> github.com/acme/pay/Card -> Validate
//	github.com/acme/pay.Card.String       -> github.com/acme/pay/Card . String
//	github.com/acme/pay.Charge.func1.2    -> github.com/acme/pay . Charge.{closure}
func splitFunction(full string) (*Name, string, string) {
	if full == "" {
		return nil, "", ""
	}
	slash := strings.LastIndexByte(full, '/')
	dot := strings.IndexByte(full[slash+1:], '.')
	if dot < 0 {
		return nil, "", full
	}
	pkg := strings.ReplaceAll(full[:slash+1+dot], "%2e", ".")
	sym := strings.ReplaceAll(full[slash+1+dot+1:], "[...]", "")

	pkgName := ParseName(pkg, DefaultSep)
	typeName := func(recv string) *Name {
		if i := strings.IndexByte(recv, '['); i > 0 {
			recv = recv[:i]
		}
		n := Name{Segments: strings.Split(pkg, "/"), Simple: recv, Sep: DefaultSep}
		return &n
	}

	if strings.HasPrefix(sym, "(*") {
		if end := strings.Index(sym, ")."); end > 0 {
			return typeName(sym[2:end]), OpPointer, markClosures(sym[end+2:])
		}
	}
	parts := strings.Split(sym, ".")
	if len(parts) >= 2 && parts[0] != "glob" && parts[1] != "" && !isClosurePart(parts[1]) && !isNumeric(parts[1]) {
		return typeName(parts[0]), OpValue, markClosures(strings.Join(parts[1:], "."))
	}
	return &pkgName, OpFunc, markClosures(sym)
}

// markClosures rewrites Go's closure suffixes (".func1", ".func1.2",
// "glob..func1") to ClosureMarker.
func markClosures(sym string) string {
	parts := strings.Split(sym, ".")
	out := parts[:0]
	closure := false
	for _, p := range parts {
		switch {
		case isClosurePart(p):
			closure = true
		case closure && isNumeric(p):
		case p == "" || p == "glob":
		default:
			out = append(out, p)
		}
	}
	if !closure {
		return sym
	}
	out = append(out, ClosureMarker)
	return strings.Join(out, ".")
}

func isClosurePart(p string) bool {
	return strings.HasPrefix(p, "func") && len(p) > 4 && isNumeric(p[4:])
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
