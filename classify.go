package failreport

import (
	"regexp"
	"strconv"
	"strings"
)

// Argument is the display form of one frame argument.
type Argument struct {
	Category  ValueKind
	Summary   string
	TypeLabel string
	Redacted  bool

	// Detail is the structural dump; HasDetail is false when the argument
	// is redacted or no dump could be produced.
	Detail    string
	HasDetail bool
}

// ClassifyArgument decides how v is displayed. traceSilenced redacts every
// argument regardless of its kind.
func ClassifyArgument(v Value, traceSilenced bool) Argument {
	a := Argument{Category: v.Kind}
	a.Redacted = traceSilenced || v.Silenced()

	switch v.Kind {
	case StringValue:
		a.Summary, a.TypeLabel = strconv.Itoa(v.Len), "string"
	case SequenceValue:
		if v.Len > 0 {
			a.Summary, a.TypeLabel = strconv.Itoa(v.Len), "array"
		} else {
			a.Summary = "array[0]"
		}
	case BoolValue:
		a.Summary = strconv.FormatBool(v.Bool)
	case NullValue:
		a.Summary = "null"
	case NumberValue:
		a.Summary = v.Num
	case ObjectValue:
		name := objectName(v)
		if a.Redacted {
			a.Summary = name
		} else {
			a.TypeLabel = name
		}
	default:
		a.TypeLabel = v.TypeName()
	}

	if !a.Redacted && v.HasDetail {
		a.Detail, a.HasDetail = v.Detail, true
	}
	return a
}

// ClassifyArguments classifies every argument of fr.
func ClassifyArguments(fr Frame, traceSilenced bool) []Argument {
	if len(fr.Args) == 0 {
		return nil
	}
	out := make([]Argument, len(fr.Args))
	for i, v := range fr.Args {
		out[i] = ClassifyArgument(v, traceSilenced)
	}
	return out
}

func objectName(v Value) string {
	if v.Type != nil {
		return Compress(v.Type.Name)
	}
	if v.GoType != "" {
		return v.GoType
	}
	return "object"
}

// Classification holds the kind-specific display fields of a failure.
type Classification struct {
	Kind Kind
	// Title is the heading split into word groups; the last group is the
	// distinguished one.
	Title []string
	Body  string

	External    string
	HasExternal bool
}

// Label joins the title groups with single spaces.
func (c Classification) Label() string { return strings.Join(c.Title, " ") }

var wordGroup = regexp.MustCompile(`[A-Z]+[a-z]+`)

// ClassifyFailure extracts the display fields of f.
func ClassifyFailure(f *Failure) Classification {
	c := Classification{Kind: f.Kind()}
	if f.Kind() == KindAssertion {
		c.Title = []string{"Assertion", "Failed"}
		c.Body = f.displayExpression()
	} else {
		c.Title = splitTitle(f.Type().Name.Simple)
		c.Body = f.Message()
	}
	c.External, c.HasExternal = f.ExternalData()
	return c
}

// splitTitle breaks a simple name at capitalization boundaries. Characters
// outside any group are attached to the group before them so no input is
// lost; a name without groups is returned whole.
func splitTitle(simple string) []string {
	idx := wordGroup.FindAllStringIndex(simple, -1)
	if len(idx) == 0 {
		if simple == "" {
			return nil
		}
		return []string{simple}
	}
	out := make([]string, 0, len(idx))
	for i, m := range idx {
		start, end := m[0], m[1]
		if i == 0 {
			start = 0
		}
		if i+1 < len(idx) {
			end = idx[i+1][0]
		} else {
			end = len(simple)
		}
		out = append(out, simple[start:end])
	}
	return out
}
