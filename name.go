// name.go - hierarchical type identifiers and their compressed display form.
//
// A Name is an ordered list of path segments followed by a simple name,
// joined by a single separator ("Acme/Billing/InvoiceError"). Compressed
// names keep only the non-lowercase characters of each path segment so long
// identifiers stay readable where space is limited: console headers, log
// lines and argument summaries ("A/B/InvoiceError").
package failreport

import (
	"reflect"
	"strings"
)

// DefaultSep separates the segments of names parsed without an explicit
// separator and of names derived from Go types.
const DefaultSep = "/"

// Name is a hierarchical identifier.
type Name struct {
	Segments []string
	Simple   string
	Sep      string
}

// ParseName splits s at sep. The last element becomes the simple name. An
// empty sep means DefaultSep.
func ParseName(s, sep string) Name {
	if sep == "" {
		sep = DefaultSep
	}
	parts := strings.Split(s, sep)
	n := Name{Simple: parts[len(parts)-1], Sep: sep}
	if len(parts) > 1 {
		n.Segments = parts[:len(parts)-1]
	}
	return n
}

func (n Name) sep() string {
	if n.Sep == "" {
		return DefaultSep
	}
	return n.Sep
}

// IsZero reports whether n carries no identifier at all.
func (n Name) IsZero() bool { return n.Simple == "" && len(n.Segments) == 0 }

// String returns the full, uncompressed identifier.
func (n Name) String() string {
	if len(n.Segments) == 0 {
		return n.Simple
	}
	return strings.Join(n.Segments, n.sep()) + n.sep() + n.Simple
}

// Compress strips lowercase ASCII letters from every path segment and keeps
// the simple name untouched. A name without segments is returned as is.
func Compress(n Name) string {
	if len(n.Segments) == 0 {
		return n.Simple
	}
	caps := make([]string, len(n.Segments))
	for i, seg := range n.Segments {
		caps[i] = stripLower(seg)
	}
	return strings.Join(caps, n.sep()) + n.sep() + n.Simple
}

// ShortName compresses an identifier given in its string form.
func ShortName(s string) string { return Compress(ParseName(s, DefaultSep)) }

func stripLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return -1
		}
		return r
	}, s)
}

// nameOfType derives a Name from a Go type: the import path becomes the
// segments and the type name the simple name. Pointers are dereferenced;
// unnamed types (slices, maps, func types) use their type literal.
func nameOfType(rt reflect.Type) Name {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return Name{}
	}
	if rt.Name() == "" || rt.PkgPath() == "" {
		return Name{Simple: rt.String(), Sep: DefaultSep}
	}
	simple := rt.Name()
	if i := strings.IndexByte(simple, '['); i > 0 {
		simple = simple[:i]
	}
	return Name{
		Segments: strings.Split(rt.PkgPath(), "/"),
		Simple:   simple,
		Sep:      DefaultSep,
	}
}
