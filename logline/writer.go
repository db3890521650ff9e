// Package logline appends one-line failure summaries to log files and stores
// full XML reports next to them.
//
// Every append holds an exclusive advisory lock on the target file for the
// whole write-and-sync sequence, so concurrent writers in other processes
// never interleave partial lines. The lock is released on every exit path.
package logline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xgx-io/failreport"
)

// TimeLayout is the ISO 8601 form used at the start of every line.
const TimeLayout = "2006-01-02T15:04:05-0700"

var (
	// ErrNoLogDir is returned when the writer has no directory.
	ErrNoLogDir = errors.New("logline: no log directory configured")
	// ErrLockFailed is returned when the exclusive lock cannot be taken.
	ErrLockFailed = errors.New("logline: could not lock log file")
	// ErrUnsupportedInput is returned for inputs that are neither a string
	// nor an error.
	ErrUnsupportedInput = errors.New("logline: unsupported input")
)

// Writer appends to files inside Dir.
type Writer struct {
	Dir    string
	Logger *zap.Logger
}

// New returns a writer for dir.
func New(dir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{Dir: dir, Logger: logger}
}

func (w *Writer) logger() *zap.Logger {
	if w == nil || w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

// Format returns the line for input without the trailing newline:
//
//	*failreport.Failure  [ts] ShortType: message in file on line N
//	other error          [ts] ShortType: message
//	string               [ts] message
//
// A zero ts means now.
func Format(input any, ts time.Time) (string, error) {
	if ts.IsZero() {
		ts = time.Now()
	}
	stamp := ts.Format(TimeLayout)
	switch in := input.(type) {
	case string:
		return fmt.Sprintf("[%s] %s", stamp, in), nil
	case *failreport.Failure:
		if in == nil {
			return "", ErrUnsupportedInput
		}
		return fmt.Sprintf("[%s] %s: %s in %s on line %d",
			stamp, failreport.ShortName(in.TypeName()), in.Message(), in.File(), in.Line()), nil
	case error:
		if f, ok := failreport.AsFailure(in); ok {
			return Format(f, ts)
		}
		f := failreport.From(in)
		return fmt.Sprintf("[%s] %s: %s", stamp, failreport.ShortName(f.TypeName()), f.Message()), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedInput, input)
}

// WriteLine appends the line for input to the file called name inside Dir.
// Only the base name of name is used, so callers cannot escape Dir.
func (w *Writer) WriteLine(name string, input any, ts time.Time) error {
	if w == nil || w.Dir == "" {
		return ErrNoLogDir
	}
	line, err := Format(input, ts)
	if err != nil {
		return err
	}
	return w.append(filepath.Join(w.Dir, filepath.Base(name)), []byte(line+"\n"))
}

// WriteReport stores an XML report as "<unix>-<uuid>.xml" inside Dir and
// returns its path.
func (w *Writer) WriteReport(xml string, ts time.Time) (string, error) {
	if w == nil || w.Dir == "" {
		return "", ErrNoLogDir
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	name := strconv.FormatInt(ts.Unix(), 10) + "-" + uuid.NewString() + ".xml"
	path := filepath.Join(w.Dir, name)
	if err := w.append(path, []byte(xml)); err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) append(path string, data []byte) (err error) {
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		w.logger().Debug("open log file", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("logline: open %s: %w", path, err)
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("logline: close %s: %w", path, cerr)
		}
	}()

	if err := lockFile(fh); err != nil {
		w.logger().Debug("lock log file", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrLockFailed, path, err)
	}
	defer func() {
		if uerr := unlockFile(fh); uerr != nil && err == nil {
			err = fmt.Errorf("logline: unlock %s: %w", path, uerr)
		}
	}()

	if _, err := fh.Write(data); err != nil {
		return fmt.Errorf("logline: write %s: %w", path, err)
	}
	if err := fh.Sync(); err != nil {
		return fmt.Errorf("logline: sync %s: %w", path, err)
	}
	return nil
}
