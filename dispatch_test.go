package failreport

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("stream closed") }

func newTestDispatcher(stderr, stdout *bytes.Buffer) (*Dispatcher, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	d := &Dispatcher{Logger: zap.New(core), HTML: HTMLOptions{Now: fixedTime}, XML: XMLOptions{Timestamp: fixedTime}}
	if stderr != nil {
		d.Stderr = stderr
	}
	if stdout != nil {
		d.Stdout = stdout
	}
	return d, logs
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range []Mode{ModeConsole, ModeHTML, ModeXML} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("pdf")
	assert.Error(t, err)
	assert.Equal(t, "mode(7)", Mode(7).String())
}

func TestDispatcher_Emit(t *testing.T) {
	t.Parallel()

	var stderr, stdout bytes.Buffer
	d, logs := newTestDispatcher(&stderr, &stdout)
	f := sampleFailure(t)

	require.NoError(t, d.Emit(f))
	assert.Equal(t, RenderConsole(f), stderr.String())
	assert.Zero(t, stdout.Len())
	assert.Zero(t, logs.Len())
}

func TestDispatcher_EmitFallsBackToStdout(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	d, logs := newTestDispatcher(nil, &stdout)
	d.Stderr = brokenWriter{}
	f := sampleFailure(t)

	require.NoError(t, d.Emit(f))
	assert.Equal(t, RenderConsole(f), stdout.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "stderr unavailable, falling back to stdout", logs.All()[0].Message)
}

func TestDispatcher_EmitNoChannel(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher(nil, nil)
	d.Stderr = brokenWriter{}
	err := d.Emit(sampleFailure(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream closed")
	assert.Contains(t, err.Error(), "no output channel")

	d.Stdout = brokenWriter{}
	assert.Error(t, d.Emit(sampleFailure(t)))
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	var stderr, stdout bytes.Buffer
	d, _ := newTestDispatcher(&stderr, &stdout)
	f := sampleFailure(t)

	require.NoError(t, d.Dispatch(f, ModeXML))
	assert.Equal(t, RenderXML(f, XMLOptions{Timestamp: fixedTime}), stdout.String())
	assert.Zero(t, stderr.Len())

	stdout.Reset()
	require.NoError(t, d.Dispatch(f, ModeHTML))
	assert.True(t, strings.HasPrefix(stdout.String(), "<!DOCTYPE html>"))

	stdout.Reset()
	require.NoError(t, d.Dispatch(f, ModeConsole))
	assert.Zero(t, stdout.Len())
	assert.Equal(t, RenderConsole(f), stderr.String())
}

func TestDispatcher_RenderLogsSecondaryFailure(t *testing.T) {
	t.Parallel()

	d, logs := newTestDispatcher(nil, nil)
	// A failure without a type descriptor cannot be rendered.
	f := &Failure{kind: KindThrown, msg: "broken", ext: &external{}, norm: &normalized{}}

	out := d.Render(f, ModeConsole)
	assert.NotEmpty(t, out)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "secondary failure while rendering", logs.All()[0].Message)
}

func TestDispatcher_WriteHTTP(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher(nil, nil)

	t.Run("default status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		req.RemoteAddr = "127.0.0.1:51234"
		rec := httptest.NewRecorder()
		d.WriteHTTP(rec, req, sampleFailure(t))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Contains(t, rec.Body.String(), "<h2>Stack Trace</h2>")
	})

	t.Run("typed status, remote requester", func(t *testing.T) {
		teapot := NewType("acme.io/kitchen/Teapot", TypeError, CapHTTP)
		f := FromTrace(KindThrown, teapot, "short and stout", sampleTrace(), Location{File: "pot.go", Line: 1}).
			WithStatus(http.StatusTeapot, "I'm a teapot")
		req := httptest.NewRequest(http.MethodGet, "/brew", nil)
		req.RemoteAddr = "203.0.113.5:443"
		rec := httptest.NewRecorder()
		d.WriteHTTP(rec, req, f)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.NotContains(t, rec.Body.String(), "Stack Trace")
		assert.Contains(t, rec.Body.String(), "short and stout")
	})
}

func TestRequestHost(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"127.0.0.1:80":    "127.0.0.1",
		"[::1]:8080":      "::1",
		"localhost":       "localhost",
		"203.0.113.5:443": "203.0.113.5",
	}
	for addr, want := range tests {
		assert.Equal(t, want, requestHost(&http.Request{RemoteAddr: addr}), addr)
	}
	assert.Empty(t, requestHost(nil))
}
