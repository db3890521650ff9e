// kind.go - the semantic kinds of a captured failure.
//
// Conventions:
//   - Kinds are a closed set; the rendering pipeline switches on them.
//   - String forms are lowercase and stable; YAML failure documents use them.
package failreport

import "fmt"

// Kind classifies how a failure came to be.
type Kind uint8

const (
	// KindThrown is an explicitly raised failure.
	KindThrown Kind = iota
	// KindRuntime is a runtime error (panic or triggered error) converted
	// into a failure by a handler.
	KindRuntime
	// KindAssertion is a failed assertion.
	KindAssertion
)

var kindNames = [...]string{
	KindThrown:    "thrown",
	KindRuntime:   "runtime",
	KindAssertion: "assertion",
}

// allKinds is the ordered set of kinds. Unexported to avoid exposing a
// mutable slice.
var allKinds = []Kind{KindThrown, KindRuntime, KindAssertion}

// Kinds returns a copy of all kinds in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range allKinds {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("failreport: unknown kind %q", s)
}
