// Package hook connects failreport to a running process: it converts panics
// and triggered errors into failures, evaluates assertions, records notices
// and reports uncaught failures through a failreport.Dispatcher.
//
// A Handler is installed explicitly and restored explicitly:
//
//	h, err := hook.Install(hook.Config{Lines: logline.New(dir, logger)})
//	if err != nil { ... }
//	defer h.Restore()
//	defer h.Recover()
package hook

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/xgx-io/failreport"
	"github.com/xgx-io/failreport/logline"
)

// Log file names inside the logline directory.
const (
	ExceptionsLog = "Exceptions.log"
	NoticesLog    = "Notices.log"
)

// Severity of a triggered runtime error.
type Severity uint8

const (
	// SevNotice is informational; execution continues.
	SevNotice Severity = iota
	// SevWarning is recoverable; execution continues.
	SevWarning
	// SevError is fatal to the current call chain: Trigger panics.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevNotice:
		return "notice"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// Config configures a Handler.
type Config struct {
	// Mode selects the report format of uncaught failures.
	Mode failreport.Mode
	// Stderr and Stdout default to the process streams.
	Stderr io.Writer
	Stdout io.Writer
	Logger *zap.Logger
	// Lines receives log lines and XML reports; nil disables file logging.
	Lines *logline.Writer
	// Assertions enables evaluation of Assert.
	Assertions bool
	// Bail makes a failed assertion report and exit instead of panicking.
	Bail bool
	// Exit terminates the process; defaults to os.Exit.
	Exit func(code int)
	// ServerSoftware is listed in HTML reports.
	ServerSoftware string
	// Server is the environment snapshot attached to XML reports.
	Server failreport.Snapshot
	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler is an installed failure handler.
type Handler struct {
	cfg        Config
	logger     *zap.Logger
	dispatcher *failreport.Dispatcher

	enabled    atomic.Bool
	assertions atomic.Bool
	prev       *Handler
}

var current atomic.Pointer[Handler]

// Current returns the most recently installed handler, or nil.
func Current() *Handler { return current.Load() }

// Install builds a handler from cfg and makes it current.
func Install(cfg Config) (*Handler, error) {
	if cfg.Mode > failreport.ModeXML {
		return nil, fmt.Errorf("hook: invalid mode %v", cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Exit == nil {
		cfg.Exit = os.Exit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	h := &Handler{
		cfg:    cfg,
		logger: cfg.Logger.Named("hook"),
		dispatcher: &failreport.Dispatcher{
			Stderr: cfg.Stderr,
			Stdout: cfg.Stdout,
			Logger: cfg.Logger.Named("dispatch"),
			HTML:   failreport.HTMLOptions{ServerSoftware: cfg.ServerSoftware},
		},
	}
	h.enabled.Store(true)
	h.assertions.Store(cfg.Assertions)
	h.prev = current.Swap(h)
	h.logger.Debug("installed", zap.Stringer("mode", cfg.Mode), zap.Bool("assertions", cfg.Assertions))
	return h, nil
}

// Restore disables h and reinstates the handler that was current before it.
func (h *Handler) Restore() {
	h.enabled.Store(false)
	current.CompareAndSwap(h, h.prev)
	h.logger.Debug("restored")
}

// Enabled reports whether h handles failures.
func (h *Handler) Enabled() bool { return h.enabled.Load() }

// EnableAssertions turns evaluation of Assert on or off.
func (h *Handler) EnableAssertions(on bool) { h.assertions.Store(on) }

// Dispatcher returns the dispatcher reports are rendered with.
func (h *Handler) Dispatcher() *failreport.Dispatcher { return h.dispatcher }

// Recover is the uncaught-failure handler. Defer it directly:
//
//	defer h.Recover()
//
// A recovered panic is converted into a failure, reported, and the process
// exits with status 1. A disabled handler re-panics.
func (h *Handler) Recover() {
	r := recover()
	if r == nil {
		return
	}
	if !h.Enabled() {
		panic(r)
	}
	raw, _ := failreport.Capture(0)
	h.Report(failureOf(r, raw))
	h.cfg.Exit(1)
}

// Guard runs fn and returns the failure it panicked with, or nil.
func (h *Handler) Guard(fn func()) (f *failreport.Failure) {
	defer func() {
		if r := recover(); r != nil {
			raw, _ := failreport.Capture(0)
			f = failureOf(r, raw)
		}
	}()
	fn()
	return nil
}

// triggered is the panic value of a fatal Trigger.
type triggered struct{ msg string }

func (t triggered) Error() string { return t.msg }

// failureOf converts a recovered value. raw starts with the frame of the
// recovering function; its position is the panic site.
func failureOf(r any, raw failreport.Trace) *failreport.Failure {
	switch v := r.(type) {
	case *failreport.Failure:
		return v
	case triggered:
		return failreport.Runtime(v.msg, raw, position(raw, 1))
	case error:
		if f, ok := failreport.AsFailure(v); ok {
			return f
		}
		return failreport.Runtime(v.Error(), raw, position(raw, 0))
	}
	return failreport.Runtime(fmt.Sprint(r), raw, position(raw, 0))
}

func position(raw failreport.Trace, i int) failreport.Location {
	if i >= len(raw) {
		return failreport.Location{}
	}
	return failreport.Location{File: raw[i].File, Line: raw[i].Line}
}

// Trigger raises a runtime error. SevNotice and SevWarning are recoverable:
// the failure is logged and returned. SevError panics; Recover, Guard and
// Middleware convert the panic.
func (h *Handler) Trigger(msg string, sev Severity) *failreport.Failure {
	if sev >= SevError {
		panic(triggered{msg: msg})
	}
	return h.handleError(msg, sev)
}

// handleError converts a recoverable runtime error. The first captured
// frame is handleError itself, followed by Trigger.
func (h *Handler) handleError(msg string, sev Severity) *failreport.Failure {
	raw, _ := failreport.Capture(0)
	f := failreport.Runtime(msg, raw, position(raw, 1))
	h.logger.Info("recoverable runtime error",
		zap.Stringer("severity", sev),
		zap.String("message", f.Message()),
		zap.String("file", f.File()),
		zap.Int("line", f.Line()))
	return f
}

// Notice records msg in the notices log and raises it as a recoverable
// runtime error whose origin is the caller of Notice.
func (h *Handler) Notice(msg string) *failreport.Failure {
	msg = failreport.NormalizeSpace(msg)
	if h.cfg.Lines != nil {
		if err := h.cfg.Lines.WriteLine(NoticesLog, msg, h.cfg.Now()); err != nil {
			h.logger.Debug("notice not logged", zap.Error(err))
		}
	}
	return h.Trigger(msg, SevNotice)
}

// Assert reports a failed assertion of expr when assertions are enabled.
// With Bail the failure is reported and the process exits with status 1;
// otherwise Assert panics with the failure, which callers may recover.
func (h *Handler) Assert(cond bool, expr string) {
	if cond || !h.assertions.Load() {
		return
	}
	h.assertFailed(expr)
}

// assertFailed captures from itself: evaluation and dispatch frames first,
// then the caller of Assert.
func (h *Handler) assertFailed(expr string) {
	raw, _ := failreport.Capture(0)
	f := failreport.Assertion(expr, raw, position(raw, 1))
	if h.cfg.Bail {
		h.Report(f)
		h.cfg.Exit(1)
		return
	}
	panic(f)
}

// Report delivers f through the dispatcher and, when configured, appends a
// summary line and stores the XML report. A failure while reporting is
// degraded to a single last-resort line on stderr.
func (h *Handler) Report(f *failreport.Failure) {
	defer func() {
		if r := recover(); r != nil {
			h.lastResort(r)
		}
	}()

	if err := h.dispatcher.Dispatch(f, h.cfg.Mode); err != nil {
		h.logger.Warn("report not delivered", zap.Error(err))
	}
	h.writeLogs(f)
}

func (h *Handler) writeLogs(f *failreport.Failure) {
	if h.cfg.Lines == nil {
		return
	}
	ts := h.cfg.Now()
	if err := h.cfg.Lines.WriteLine(ExceptionsLog, f, ts); err != nil {
		h.logger.Warn("log line not written", zap.Error(err))
	}
	report := failreport.RenderXML(f, failreport.XMLOptions{Timestamp: ts, Server: h.cfg.Server})
	if path, err := h.cfg.Lines.WriteReport(report, ts); err != nil {
		h.logger.Warn("report not stored", zap.Error(err))
	} else {
		h.logger.Debug("report stored", zap.String("path", path))
	}
}

func (h *Handler) lastResort(r any) {
	msg := fmt.Sprint(r)
	if err, ok := r.(error); ok {
		msg = err.Error()
	}
	_, _ = fmt.Fprintf(h.cfg.Stderr, "Uncaught %T inside exception-handler: %q\n", r, msg)
}
