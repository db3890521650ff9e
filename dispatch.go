package failreport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Mode selects the report format.
type Mode uint8

const (
	ModeConsole Mode = iota
	ModeHTML
	ModeXML
)

var modeNames = [...]string{
	ModeConsole: "console",
	ModeHTML:    "html",
	ModeXML:     "xml",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("failreport: unknown mode %q", s)
}

// Dispatcher renders failures and delivers them to an output channel.
type Dispatcher struct {
	// Stderr receives console reports; Stdout is the fallback when writing
	// to Stderr fails, and the channel for HTML and XML reports.
	Stderr io.Writer
	Stdout io.Writer
	Logger *zap.Logger

	// HTML and XML are the base options of their renderers.
	HTML HTMLOptions
	XML  XMLOptions
}

// NewDispatcher returns a dispatcher bound to the process's standard
// streams. A nil logger disables logging.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Stderr: os.Stderr, Stdout: os.Stdout, Logger: logger}
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Render returns the report of f in mode. A rendering failure is logged and
// degraded to its own message.
func (d *Dispatcher) Render(f *Failure, mode Mode) string {
	var render renderFunc
	switch mode {
	case ModeHTML:
		render = func() (string, error) { return renderHTML(f, d.HTML) }
	case ModeXML:
		render = func() (string, error) { return renderXML(f, d.XML) }
	default:
		render = func() (string, error) { return renderConsole(f), nil }
	}
	out, err := safely(render)
	if err != nil {
		d.logger().Warn("secondary failure while rendering",
			zap.Stringer("mode", mode),
			zap.String("type", f.TypeName()),
			zap.Error(err))
	}
	return out
}

// Dispatch renders f in mode and writes it to the mode's channel.
func (d *Dispatcher) Dispatch(f *Failure, mode Mode) error {
	if mode == ModeConsole {
		return d.Emit(f)
	}
	_, err := io.WriteString(d.Stdout, d.Render(f, mode))
	return err
}

// Emit writes the console report of f to Stderr, falling back to Stdout
// when Stderr is unavailable.
func (d *Dispatcher) Emit(f *Failure) error {
	report := d.Render(f, ModeConsole)
	var errStderr error
	if d.Stderr != nil {
		if _, errStderr = io.WriteString(d.Stderr, report); errStderr == nil {
			return nil
		}
		d.logger().Warn("stderr unavailable, falling back to stdout", zap.Error(errStderr))
	}
	if d.Stdout == nil {
		return errors.Join(errStderr, errors.New("failreport: no output channel"))
	}
	if _, err := io.WriteString(d.Stdout, report); err != nil {
		return errors.Join(errStderr, err)
	}
	return nil
}

// WriteHTTP answers r with the failure's status and HTML report. The trace
// is included only for loopback requesters.
func (d *Dispatcher) WriteHTTP(w http.ResponseWriter, r *http.Request, f *Failure) {
	opts := d.HTML
	opts.RemoteAddr = requestHost(r)
	out, err := safely(func() (string, error) { return renderHTML(f, opts) })
	if err != nil {
		d.logger().Warn("secondary failure while rendering", zap.Stringer("mode", ModeHTML), zap.Error(err))
	}
	code, _ := f.Status()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, out)
}

// requestHost returns the bare host of the requester.
func requestHost(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
