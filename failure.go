// failure.go - the captured failure record and its constructors.
//
// A Failure is immutable once built, with two exceptions: external data may
// be attached later (SetExternalData), and a runtime failure raised through
// the notice entry point reports the notice call site as its origin once its
// trace is normalized. Normalization happens at most once per Failure and is
// safe for concurrent readers.
//
// Builders (WithCause, WithStatus) are copy-on-write: they return a new
// Failure and never alter the receiver.
package failreport

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

// ErrCauseCycle is returned by WithCause when the cause chain already
// contains the receiver.
var ErrCauseCycle = errors.New("failreport: cause would form a cycle")

// Failure is something that interrupted normal execution.
type Failure struct {
	kind       Kind
	typ        *Type
	msg        string
	file       string
	line       int
	cause      *Failure
	wrapped    error
	raw        Trace
	expression string
	status     int
	statusText string

	ext  *external
	norm *normalized
}

type external struct {
	mu   sync.Mutex
	data *string
}

type normalized struct {
	once   sync.Once
	trace  Trace
	origin *Location
}

var spaceRun = regexp.MustCompile(`[\t\n\v\f\r ]+`)

// NormalizeSpace collapses every run of whitespace into a single space.
// It is idempotent.
func NormalizeSpace(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}

// Option configures a failure at construction.
type Option func(*options)

type options struct {
	skip     int
	args     []any
	origin   *Location
	cause    *Failure
	registry *Registry
}

// Skip omits n additional frames from the captured trace, for helpers that
// construct failures on behalf of their caller.
func Skip(n int) Option { return func(o *options) { o.skip += n } }

// Args snapshots the arguments of the failing call onto the failure-site
// frame.
func Args(vals ...any) Option { return func(o *options) { o.args = append(o.args, vals...) } }

// At overrides the recorded origin.
func At(file string, line int) Option {
	return func(o *options) { o.origin = &Location{File: file, Line: line} }
}

// Cause links the failure that led to this one.
func Cause(c *Failure) Option { return func(o *options) { o.cause = c } }

// WithRegistry resolves argument types through r instead of DefaultRegistry.
func WithRegistry(r *Registry) Option { return func(o *options) { o.registry = r } }

// New raises a failure of type t at the caller's position. A nil t means
// TypeError.
func New(t *Type, msg string, opts ...Option) *Failure {
	o := collect(opts)
	raw, loc := captureTrace(o.skip+1, defaultMaxDepth)
	return build(KindThrown, t, msg, raw, loc, o)
}

// Errorf is New with a formatted message.
func Errorf(t *Type, format string, a ...any) *Failure {
	raw, loc := captureTrace(1, defaultMaxDepth)
	return build(KindThrown, t, fmt.Sprintf(format, a...), raw, loc, &options{})
}

// Runtime converts a runtime error into a failure. raw must start with the
// conversion handler's frame; origin is the position of the error.
func Runtime(msg string, raw Trace, origin Location, opts ...Option) *Failure {
	return build(KindRuntime, TypeRuntimeError, msg, raw, origin, collect(opts))
}

// Assertion records a failed assertion. raw must start with the assertion
// dispatch and evaluation frames; origin is the position of the assertion.
func Assertion(expr string, raw Trace, origin Location, opts ...Option) *Failure {
	f := build(KindAssertion, TypeAssertionFailed, "", raw, origin, collect(opts))
	f.expression = NormalizeSpace(expr)
	f.msg = `Assertion "` + f.displayExpression() + `" failed`
	return f
}

// FromTrace builds a failure from an already captured trace, e.g. one read
// back from a failure document.
func FromTrace(kind Kind, t *Type, msg string, raw Trace, origin Location, opts ...Option) *Failure {
	f := build(kind, t, msg, raw, origin, collect(opts))
	return f
}

func collect(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func build(kind Kind, t *Type, msg string, raw Trace, loc Location, o *options) *Failure {
	if t == nil {
		t = TypeError
	}
	if o.origin != nil {
		loc = *o.origin
	}
	raw = raw.clone()
	if len(o.args) > 0 && len(raw) > 0 {
		reg := o.registry
		if reg == nil {
			reg = DefaultRegistry
		}
		raw[0].Args = reg.Values(o.args...)
	}
	return &Failure{
		kind:  kind,
		typ:   t,
		msg:   NormalizeSpace(msg),
		file:  loc.File,
		line:  loc.Line,
		cause: o.cause,
		raw:   raw,
		ext:   &external{},
		norm:  &normalized{},
	}
}

// Kind returns how the failure came to be.
func (f *Failure) Kind() Kind { return f.kind }

// Type returns the failure's type descriptor.
func (f *Failure) Type() *Type { return f.typ }

// TypeName returns the full type name.
func (f *Failure) TypeName() string { return f.typ.String() }

// Message returns the whitespace-normalized message.
func (f *Failure) Message() string { return f.msg }

// Expression returns the failed assertion's source text, possibly empty.
func (f *Failure) Expression() string { return f.expression }

func (f *Failure) displayExpression() string {
	if f.expression == "" {
		return "false"
	}
	return f.expression
}

// File returns the origin file.
func (f *Failure) File() string {
	if o := f.normalize().origin; o != nil {
		return o.File
	}
	return f.file
}

// Line returns the origin line.
func (f *Failure) Line() int {
	if o := f.normalize().origin; o != nil {
		return o.Line
	}
	return f.line
}

// Cause returns the failure that led to this one, or nil.
func (f *Failure) Cause() *Failure { return f.cause }

// Unwrap exposes the cause, or the foreign error the failure was built
// from, to errors.Is/As.
func (f *Failure) Unwrap() error {
	if f.cause != nil {
		return f.cause
	}
	return f.wrapped
}

// RawTrace returns a copy of the trace as captured, innermost first.
func (f *Failure) RawTrace() Trace { return f.raw.clone() }

// Trace returns a copy of the normalized trace, failure site first.
func (f *Failure) Trace() Trace { return f.normalize().trace.clone() }

func (f *Failure) normalize() *normalized {
	f.norm.once.Do(func() {
		f.norm.trace, f.norm.origin = Normalize(f.raw, f.kind)
	})
	return f.norm
}

// Muted reports whether the whole trace is redacted.
func (f *Failure) Muted() bool { return f.typ.Has(CapSilenced) }

// ExternalData returns data attached from an external source. ok is true
// when data was attached or the failure type carries CapExternal.
func (f *Failure) ExternalData() (data string, ok bool) {
	f.ext.mu.Lock()
	defer f.ext.mu.Unlock()
	if f.ext.data != nil {
		return *f.ext.data, true
	}
	return "", f.typ.Has(CapExternal)
}

// SetExternalData attaches diagnostic data from an external source.
func (f *Failure) SetExternalData(data string) {
	f.ext.mu.Lock()
	f.ext.data = &data
	f.ext.mu.Unlock()
}

// Status returns the HTTP status a server should answer with.
func (f *Failure) Status() (code int, text string) {
	if f.status != 0 && f.typ.Has(CapHTTP) {
		return f.status, f.statusText
	}
	return 500, "Internal Server Error"
}

// WithStatus returns a copy carrying an HTTP status. The status is honored
// only for types with CapHTTP.
func (f *Failure) WithStatus(code int, text string) *Failure {
	n := f.clone()
	n.status, n.statusText = code, text
	return n
}

// WithCause returns a copy linked to cause. It refuses a cause whose chain
// already contains f.
func (f *Failure) WithCause(cause *Failure) (*Failure, error) {
	if chainContains(cause, f) {
		return f, ErrCauseCycle
	}
	n := f.clone()
	n.cause = cause
	return n, nil
}

func (f *Failure) clone() *Failure {
	n := *f
	n.raw = f.raw.clone()
	n.norm = &normalized{}
	n.ext = &external{}
	if data, ok := f.ExternalData(); ok && f.ext.data != nil {
		n.ext.data = &data
	}
	return &n
}

// Error returns "<Type>: <message>".
func (f *Failure) Error() string {
	if f.kind == KindAssertion {
		return f.msg
	}
	if f.msg == "" {
		return f.typ.Name.Simple
	}
	return f.typ.Name.Simple + ": " + f.msg
}

var _ error = (*Failure)(nil)
