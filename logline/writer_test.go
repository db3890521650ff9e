package logline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xgx-io/failreport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedTime = time.Date(2024, time.March, 9, 14, 5, 30, 0, time.FixedZone("CET", 3600))

const stamp = "[2024-03-09T14:05:30+0100]"

func TestFormat(t *testing.T) {
	t.Parallel()

	quota := failreport.NewType("acme.io/store/QuotaExceeded", failreport.TypeError)
	f := failreport.New(quota, "too many\n\tfiles", failreport.At("/srv/store/put.go", 31))

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"string", "cache warmed", stamp + " cache warmed"},
		{"failure", f, stamp + " .//QuotaExceeded: too many files in /srv/store/put.go on line 31"},
		{"wrapped failure", fmt.Errorf("put: %w", f), stamp + " .//QuotaExceeded: too many files in /srv/store/put.go on line 31"},
		{"foreign error", io.ErrClosedPipe, stamp + " /errorString: io: read/write on closed pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.input, fixedTime)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := Format(42, fixedTime)
	assert.ErrorIs(t, err, ErrUnsupportedInput)
	_, err = Format((*failreport.Failure)(nil), fixedTime)
	assert.ErrorIs(t, err, ErrUnsupportedInput)
}

func TestFormat_ZeroTimeIsNow(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	got, err := Format("x", time.Time{})
	require.NoError(t, err)

	ts, err := time.Parse(TimeLayout, strings.TrimSuffix(strings.TrimPrefix(got, "["), "] x"))
	require.NoError(t, err)
	assert.False(t, ts.Before(before.Truncate(time.Second)))
}

func TestWriteLine_NoDir(t *testing.T) {
	t.Parallel()

	var nilWriter *Writer
	assert.ErrorIs(t, nilWriter.WriteLine("a.log", "x", fixedTime), ErrNoLogDir)
	assert.ErrorIs(t, New("", nil).WriteLine("a.log", "x", fixedTime), ErrNoLogDir)
	_, err := New("", nil).WriteReport("<exception/>", fixedTime)
	assert.ErrorIs(t, err, ErrNoLogDir)
}

func TestWriteLine_Appends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := New(dir, nil)
	require.NoError(t, w.WriteLine("Notices.log", "first", fixedTime))
	require.NoError(t, w.WriteLine("Notices.log", "second", fixedTime))

	data, err := os.ReadFile(filepath.Join(dir, "Notices.log"))
	require.NoError(t, err)
	assert.Equal(t, stamp+" first\n"+stamp+" second\n", string(data))
}

func TestWriteLine_StaysInsideDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := New(filepath.Join(dir, "logs"), nil)
	require.NoError(t, os.Mkdir(w.Dir, 0o755))

	require.NoError(t, w.WriteLine("../escape.log", "x", fixedTime))
	_, err := os.Stat(filepath.Join(w.Dir, "escape.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.log"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteLine_OpenFails(t *testing.T) {
	t.Parallel()

	w := New(filepath.Join(t.TempDir(), "missing"), nil)
	err := w.WriteLine("a.log", "x", fixedTime)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteLine_Concurrent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := New(dir, nil)

	const writers, lines = 8, 50
	var wg sync.WaitGroup
	for g := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range lines {
				msg := fmt.Sprintf("writer=%d line=%d %s", g, i, strings.Repeat("x", 512))
				if err := w.WriteLine("Exceptions.log", msg, fixedTime); err != nil {
					t.Errorf("write: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	fh, err := os.Open(filepath.Join(dir, "Exceptions.log"))
	require.NoError(t, err)
	defer fh.Close()

	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	count := 0
	for sc.Scan() {
		line := sc.Text()
		require.True(t, strings.HasPrefix(line, stamp+" writer="), "interleaved line %q", line)
		require.True(t, strings.HasSuffix(line, strings.Repeat("x", 512)), "truncated line %q", line)
		count++
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, writers*lines, count)
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := New(dir, nil)

	p1, err := w.WriteReport("<exception>one</exception>", fixedTime)
	require.NoError(t, err)
	p2, err := w.WriteReport("<exception>two</exception>", fixedTime)
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.Equal(t, dir, filepath.Dir(p1))
	prefix := strconv.FormatInt(fixedTime.Unix(), 10) + "-"
	assert.True(t, strings.HasPrefix(filepath.Base(p1), prefix))
	assert.Equal(t, ".xml", filepath.Ext(p1))

	data, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, "<exception>two</exception>", string(data))
}
