// snapshot.go - ordered name/value snapshots for report sections.
//
// Snapshots feed the request and environment sections of XML reports. They
// are plain ordered slices so rendering is deterministic: map-based sources
// are sorted by name at construction, variadic sources keep their order.
package failreport

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Field is one named value in a snapshot.
type Field struct {
	Name  string
	Value string
}

// Snapshot is an ordered list of fields. Treat it as immutable once built.
type Snapshot []Field

// SnapshotOf builds a snapshot from m, sorted by name.
func SnapshotOf(m map[string]string) Snapshot {
	if len(m) == 0 {
		return nil
	}
	out := make(Snapshot, 0, len(m))
	for k, v := range m {
		out = append(out, Field{Name: k, Value: v})
	}
	out.sort()
	return out
}

// SnapshotKV reads pairs left to right as (name, value). A non-string name
// drops the whole pair so later pairs stay aligned; a trailing name without
// a value gets an empty value. Values are formatted with fmt.Sprint.
func SnapshotKV(kv ...any) Snapshot {
	if len(kv) == 0 {
		return nil
	}
	out := make(Snapshot, 0, len(kv)/2+1)
	for i := 0; i < len(kv); {
		k, ok := kv[i].(string)
		if !ok {
			i += min(2, len(kv)-i)
			continue
		}
		var v string
		if i+1 < len(kv) {
			v = fmt.Sprint(kv[i+1])
			i += 2
		} else {
			i++
		}
		out = append(out, Field{Name: k, Value: v})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// EnvironSnapshot parses "NAME=value" entries as returned by os.Environ.
// Entries without '=' are kept with an empty value.
func EnvironSnapshot(environ []string) Snapshot {
	if len(environ) == 0 {
		return nil
	}
	out := make(Snapshot, 0, len(environ))
	for _, kv := range environ {
		name, value, _ := strings.Cut(kv, "=")
		if name == "" {
			continue
		}
		out = append(out, Field{Name: name, Value: value})
	}
	out.sort()
	return out
}

// RequestSnapshot flattens request parameters, sorted by name. A parameter
// given several times yields one field per value, in request order.
func RequestSnapshot(vals url.Values) Snapshot {
	if len(vals) == 0 {
		return nil
	}
	names := make([]string, 0, len(vals))
	for k := range vals {
		names = append(names, k)
	}
	slices.Sort(names)
	var out Snapshot
	for _, k := range names {
		for _, v := range vals[k] {
			out = append(out, Field{Name: k, Value: v})
		}
	}
	return out
}

// Map returns a new map of the snapshot; later duplicates win.
func (s Snapshot) Map() map[string]string {
	if len(s) == 0 {
		return nil
	}
	m := make(map[string]string, len(s))
	for _, f := range s {
		m[f.Name] = f.Value
	}
	return m
}

func (s Snapshot) sort() {
	slices.SortStableFunc(s, func(a, b Field) int { return strings.Compare(a.Name, b.Name) })
}
