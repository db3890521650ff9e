package failreport

import (
	"fmt"
	"reflect"
	"sync"
)

// Capability is a tag attached to a type descriptor. Capabilities are
// inherited: a type has a capability when it or any of its ancestors
// declares it.
type Capability uint8

const (
	// CapSilenced redacts instances of the type from trace arguments; a
	// failure whose type is silenced mutes its whole trace.
	CapSilenced Capability = 1 << iota
	// CapExternal marks failures that carry diagnostic data from an
	// external source (a remote service, a database driver).
	CapExternal
	// CapHTTP marks failures that map to a specific HTTP status.
	CapHTTP
)

// maxLineage bounds ancestry walks so a malformed descriptor graph cannot
// loop forever.
const maxLineage = 64

// Type describes a failure type or an argument's object type: its
// hierarchical name, its parent in the type hierarchy and its capabilities.
type Type struct {
	Name   Name
	Parent *Type
	Caps   Capability
}

// NewType parses name with DefaultSep and returns a descriptor below parent.
func NewType(name string, parent *Type, caps ...Capability) *Type {
	t := &Type{Name: ParseName(name, DefaultSep), Parent: parent}
	for _, c := range caps {
		t.Caps |= c
	}
	return t
}

// Has reports whether t or one of its ancestors carries c. A nil type has
// no capabilities.
func (t *Type) Has(c Capability) bool {
	for _, a := range t.Lineage() {
		if a.Caps&c != 0 {
			return true
		}
	}
	return false
}

// Lineage returns the ancestry of t, root first and t last. The walk stops
// at the first repeated descriptor.
func (t *Type) Lineage() []*Type {
	if t == nil {
		return nil
	}
	var out []*Type
	seen := make(map[*Type]struct{}, 4)
	for cur := t; cur != nil && len(out) < maxLineage; cur = cur.Parent {
		if _, dup := seen[cur]; dup {
			break
		}
		seen[cur] = struct{}{}
		out = append(out, cur)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (t *Type) String() string {
	if t == nil {
		return ""
	}
	return t.Name.String()
}

// Built-in failure types.
var (
	// TypeFailure is the root of every failure hierarchy.
	TypeFailure = NewType("Failure", nil)
	// TypeError is the default type of explicitly raised failures.
	TypeError = NewType("failreport/Error", TypeFailure)
	// TypeRuntimeError is the type of panics and triggered runtime errors.
	TypeRuntimeError = NewType("failreport/RuntimeError", TypeFailure)
	// TypeAssertionFailed is the type of failed assertions.
	TypeAssertionFailed = NewType("failreport/AssertionFailed", TypeFailure)
)

// Registry maps Go types to descriptors so argument values can be
// classified by capability. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[reflect.Type]*Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[reflect.Type]*Type)}
}

// DefaultRegistry is consulted by ValueOf and the failure constructors.
var DefaultRegistry = NewRegistry()

// Register binds the dynamic type of sample (pointers dereferenced) to t.
func (r *Registry) Register(sample any, t *Type) {
	rt := baseType(reflect.TypeOf(sample))
	if rt == nil || t == nil {
		return
	}
	r.mu.Lock()
	r.types[rt] = t
	r.mu.Unlock()
}

// Silence registers the dynamic type of sample with CapSilenced and returns
// the descriptor.
func (r *Registry) Silence(sample any) *Type {
	t := &Type{Name: nameOfType(reflect.TypeOf(sample)), Caps: CapSilenced}
	r.Register(sample, t)
	return t
}

// Lookup returns the descriptor registered for rt, or a derived descriptor
// without capabilities.
func (r *Registry) Lookup(rt reflect.Type) *Type {
	rt = baseType(rt)
	if rt == nil {
		return nil
	}
	if r != nil {
		r.mu.RLock()
		t, ok := r.types[rt]
		r.mu.RUnlock()
		if ok {
			return t
		}
	}
	return &Type{Name: nameOfType(rt)}
}

func baseType(rt reflect.Type) reflect.Type {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CapSilenced, "silenced"},
	{CapExternal, "external"},
	{CapHTTP, "http"},
}

// Names lists the capabilities set in c.
func (c Capability) Names() []string {
	var out []string
	for _, cn := range capabilityNames {
		if c&cn.c != 0 {
			out = append(out, cn.name)
		}
	}
	return out
}

// ParseCapability returns the capability called name.
func ParseCapability(name string) (Capability, error) {
	for _, cn := range capabilityNames {
		if cn.name == name {
			return cn.c, nil
		}
	}
	return 0, fmt.Errorf("failreport: unknown capability %q", name)
}
