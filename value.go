// value.go - argument snapshots.
//
// Trace arguments are captured as Values: a closed set of kinds decided once,
// at capture time, from the Go value. Rendering never inspects live values,
// so later mutation of an argument cannot change a report and redaction can
// be decided from the snapshot alone.
package failreport

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// ValueKind is the display category of an argument.
type ValueKind uint8

const (
	StringValue ValueKind = iota
	SequenceValue
	BoolValue
	NullValue
	NumberValue
	ObjectValue
	OtherValue
)

var valueKindNames = [...]string{
	StringValue:   "string",
	SequenceValue: "sequence",
	BoolValue:     "bool",
	NullValue:     "null",
	NumberValue:   "number",
	ObjectValue:   "object",
	OtherValue:    "other",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseValueKind is the inverse of ValueKind.String.
func ParseValueKind(s string) (ValueKind, error) {
	for k, name := range valueKindNames {
		if name == s {
			return ValueKind(k), nil
		}
	}
	return 0, fmt.Errorf("failreport: unknown value kind %q", s)
}

// Value is a snapshot of one argument.
type Value struct {
	Kind   ValueKind
	Str    string // StringValue contents
	Len    int    // StringValue byte length, SequenceValue element count
	Bool   bool   // BoolValue
	Num    string // NumberValue literal
	Float  bool   // NumberValue holds a floating-point number
	Type   *Type  // ObjectValue descriptor; nil when it could not be resolved
	GoType string // runtime type as printed by Go, e.g. "[]string"

	// Detail is a full structural dump. HasDetail is false when the dump was
	// skipped (silenced type) or could not be produced.
	Detail    string
	HasDetail bool
}

// Silenced reports whether the value must be redacted on its own account:
// an object whose type carries CapSilenced, or whose type is unknown.
func (v Value) Silenced() bool {
	if v.Kind != ObjectValue {
		return false
	}
	return v.Type == nil || v.Type.Has(CapSilenced)
}

// TypeName is the type label used in XML logs.
func (v Value) TypeName() string {
	switch v.Kind {
	case StringValue:
		return "string"
	case SequenceValue:
		return "array"
	case BoolValue:
		return "boolean"
	case NullValue:
		return "NULL"
	case NumberValue:
		if v.Float {
			return "double"
		}
		return "integer"
	case ObjectValue:
		return "object"
	}
	if v.GoType != "" {
		return v.GoType
	}
	return "unknown"
}

// Values snapshots each argument with DefaultRegistry.
func Values(args ...any) []Value {
	return DefaultRegistry.Values(args...)
}

// Values snapshots each argument, resolving object types through r.
func (r *Registry) Values(args ...any) []Value {
	if len(args) == 0 {
		return nil
	}
	out := make([]Value, len(args))
	for i, a := range args {
		out[i] = r.ValueOf(a)
	}
	return out
}

// ValueOf snapshots v with DefaultRegistry.
func ValueOf(v any) Value { return DefaultRegistry.ValueOf(v) }

// maxDeref bounds pointer chasing for pointer-to-pointer chains.
const maxDeref = 8

// ValueOf snapshots v, resolving object types through r.
func (r *Registry) ValueOf(v any) Value {
	if v == nil {
		return Value{Kind: NullValue}
	}
	if f, ok := v.(*Failure); ok && f != nil {
		out := Value{Kind: ObjectValue, Type: f.typ, GoType: "*failreport.Failure"}
		if !out.Silenced() {
			out.Detail, out.HasDetail = f.Error(), true
		}
		return out
	}

	rv := reflect.ValueOf(v)
	out := Value{GoType: rv.Type().String()}
	for i := 0; i < maxDeref && rv.Kind() == reflect.Pointer; i++ {
		if rv.IsNil() {
			out.Kind = NullValue
			return out
		}
		if rv.Elem().Kind() == reflect.Struct {
			break
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		s := rv.String()
		out.Kind, out.Str, out.Len = StringValue, s, len(s)
		out.Detail, out.HasDetail = s, true
	case reflect.Slice, reflect.Array, reflect.Map:
		out.Kind, out.Len = SequenceValue, rv.Len()
		out.Detail, out.HasDetail = dump(v)
	case reflect.Bool:
		out.Kind, out.Bool = BoolValue, rv.Bool()
		out.Detail, out.HasDetail = strconv.FormatBool(out.Bool), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.Kind, out.Num = NumberValue, strconv.FormatInt(rv.Int(), 10)
		out.Detail, out.HasDetail = out.Num, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out.Kind, out.Num = NumberValue, strconv.FormatUint(rv.Uint(), 10)
		out.Detail, out.HasDetail = out.Num, true
	case reflect.Float32, reflect.Float64:
		out.Kind, out.Float = NumberValue, true
		out.Num = strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits())
		out.Detail, out.HasDetail = out.Num, true
	case reflect.Struct, reflect.Pointer:
		out.Kind = ObjectValue
		out.Type = r.Lookup(rv.Type())
		if !out.Silenced() {
			out.Detail, out.HasDetail = dump(v)
		}
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			out.Kind = NullValue
			return out
		}
		out.Kind = OtherValue
		out.Detail, out.HasDetail = dump(v)
	default:
		out.Kind = OtherValue
		out.Detail, out.HasDetail = dump(v)
	}
	return out
}

// dumper renders structural dumps. Methods are not invoked: a Stringer on
// an argument could panic or print secrets its fields do not expose. spew
// detects pointer cycles, so self-referential values terminate.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                8,
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// dump returns the structural dump of v. A panic while dumping yields no
// detail instead of aborting the capture.
func dump(v any) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()
	return strings.TrimRight(dumper.Sdump(v), "\n"), true
}
