package failreport

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotOf(t *testing.T) {
	t.Parallel()

	assert.Nil(t, SnapshotOf(nil))
	got := SnapshotOf(map[string]string{"b": "2", "a": "1", "c": "3"})
	assert.Equal(t, Snapshot{{"a", "1"}, {"b", "2"}, {"c", "3"}}, got)
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, got.Map())
}

func TestSnapshotKV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kv   []any
		want Snapshot
	}{
		{"empty", nil, nil},
		{"pairs in order", []any{"z", 1, "a", true}, Snapshot{{"z", "1"}, {"a", "true"}}},
		{"trailing name", []any{"k", "v", "dangling"}, Snapshot{{"k", "v"}, {"dangling", ""}}},
		{"non-string name drops pair", []any{42, "lost", "k", "v"}, Snapshot{{"k", "v"}}},
		{"only bad names", []any{1, 2}, nil},
		{"odd bad name", []any{1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SnapshotKV(tt.kv...))
		})
	}
}

func TestEnvironSnapshot(t *testing.T) {
	t.Parallel()

	got := EnvironSnapshot([]string{"PATH=/bin:/usr/bin", "EMPTY=", "FLAG", "=skipped", "DSN=user=a pass=b"})
	assert.Equal(t, Snapshot{
		{"DSN", "user=a pass=b"},
		{"EMPTY", ""},
		{"FLAG", ""},
		{"PATH", "/bin:/usr/bin"},
	}, got)
	assert.Nil(t, EnvironSnapshot(nil))
}

func TestRequestSnapshot(t *testing.T) {
	t.Parallel()

	got := RequestSnapshot(url.Values{"tag": {"b", "a"}, "id": {"1"}})
	assert.Equal(t, Snapshot{{"id", "1"}, {"tag", "b"}, {"tag", "a"}}, got)
	assert.Equal(t, "a", got.Map()["tag"], "later duplicates win")
	assert.Nil(t, Snapshot(nil).Map())
}
