// document.go - YAML failure documents.
//
// A document is the serialisable form of a captured failure: its type
// lineage with capabilities, message, origin and raw trace with argument
// snapshots. Documents let a failure captured in one process be rendered in
// another (see cmd/failreport render).
package failreport

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the YAML form of a failure.
type Document struct {
	Kind       string     `yaml:"kind"`
	Lineage    []TypeDoc  `yaml:"type"`
	Message    string     `yaml:"message,omitempty"`
	Expression string     `yaml:"expression,omitempty"`
	File       string     `yaml:"file,omitempty"`
	Line       int        `yaml:"line,omitempty"`
	External   *string    `yaml:"external,omitempty"`
	Status     int        `yaml:"status,omitempty"`
	StatusText string     `yaml:"status_text,omitempty"`
	Trace      []FrameDoc `yaml:"trace,omitempty"`
	Cause      *Document  `yaml:"cause,omitempty"`
}

// TypeDoc is one entry of a type lineage, root first.
type TypeDoc struct {
	Name string   `yaml:"name"`
	Caps []string `yaml:"caps,omitempty,flow"`
}

// FrameDoc is one raw trace frame.
type FrameDoc struct {
	Type     string   `yaml:"type,omitempty"`
	Op       string   `yaml:"op,omitempty"`
	Function string   `yaml:"function"`
	File     string   `yaml:"file,omitempty"`
	Line     int      `yaml:"line,omitempty"`
	Args     []ArgDoc `yaml:"args,omitempty"`
}

// ArgDoc is an argument snapshot.
type ArgDoc struct {
	Kind   string    `yaml:"kind"`
	Str    string    `yaml:"str,omitempty"`
	Len    int       `yaml:"len,omitempty"`
	Bool   bool      `yaml:"bool,omitempty"`
	Num    string    `yaml:"num,omitempty"`
	Float  bool      `yaml:"float,omitempty"`
	Type   []TypeDoc `yaml:"type,omitempty"`
	GoType string    `yaml:"go_type,omitempty"`
	Detail *string   `yaml:"detail,omitempty"`
}

// DocumentOf returns the document of f and its causes.
func DocumentOf(f *Failure) Document {
	d := documentOf(f)
	cur := &d
	for _, c := range Chain(f)[1:] {
		cd := documentOf(c)
		cur.Cause = &cd
		cur = cur.Cause
	}
	return d
}

func documentOf(f *Failure) Document {
	d := Document{
		Kind:       f.kind.String(),
		Lineage:    lineageDoc(f.typ),
		Message:    f.msg,
		Expression: f.expression,
		File:       f.file,
		Line:       f.line,
		Status:     f.status,
		StatusText: f.statusText,
	}
	f.ext.mu.Lock()
	if f.ext.data != nil {
		data := *f.ext.data
		d.External = &data
	}
	f.ext.mu.Unlock()

	for _, fr := range f.raw {
		fd := FrameDoc{Op: fr.Op, Function: fr.Function, File: fr.File, Line: fr.Line}
		if fr.Type != nil {
			fd.Type = fr.Type.String()
		}
		for _, v := range fr.Args {
			fd.Args = append(fd.Args, argDoc(v))
		}
		d.Trace = append(d.Trace, fd)
	}
	return d
}

func lineageDoc(t *Type) []TypeDoc {
	lineage := t.Lineage()
	out := make([]TypeDoc, len(lineage))
	for i, a := range lineage {
		out[i] = TypeDoc{Name: a.Name.String(), Caps: a.Caps.Names()}
	}
	return out
}

func argDoc(v Value) ArgDoc {
	a := ArgDoc{
		Kind:   v.Kind.String(),
		Str:    v.Str,
		Len:    v.Len,
		Bool:   v.Bool,
		Num:    v.Num,
		Float:  v.Float,
		GoType: v.GoType,
	}
	if v.Type != nil {
		a.Type = lineageDoc(v.Type)
	}
	if v.HasDetail {
		detail := v.Detail
		a.Detail = &detail
	}
	return a
}

// MarshalDocument encodes f and its causes as YAML.
func MarshalDocument(f *Failure) ([]byte, error) {
	out, err := yaml.Marshal(DocumentOf(f))
	if err != nil {
		return nil, fmt.Errorf("failreport: marshal document: %w", err)
	}
	return out, nil
}

// ParseDocument decodes a YAML document into a failure.
func ParseDocument(data []byte) (*Failure, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failreport: parse document: %w", err)
	}
	return d.Failure()
}

// Failure rebuilds the failure described by d.
func (d Document) Failure() (*Failure, error) {
	return d.failure(0)
}

func (d Document) failure(depth int) (*Failure, error) {
	if depth >= maxChain {
		return nil, fmt.Errorf("failreport: document: %w", ErrCauseCycle)
	}
	kind, err := ParseKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("failreport: document: %w", err)
	}
	t, err := typeFromDoc(d.Lineage)
	if err != nil {
		return nil, err
	}

	raw := make(Trace, 0, len(d.Trace))
	for i, fd := range d.Trace {
		fr := Frame{Op: fd.Op, Function: fd.Function, File: fd.File, Line: fd.Line}
		if fd.Type != "" {
			n := ParseName(fd.Type, DefaultSep)
			fr.Type = &n
		}
		for j, ad := range fd.Args {
			v, err := valueFromDoc(ad)
			if err != nil {
				return nil, fmt.Errorf("failreport: document: frame %d arg %d: %w", i, j, err)
			}
			fr.Args = append(fr.Args, v)
		}
		raw = append(raw, fr)
	}

	var opts []Option
	if d.Cause != nil {
		cause, err := d.Cause.failure(depth + 1)
		if err != nil {
			return nil, err
		}
		opts = append(opts, Cause(cause))
	}

	origin := Location{File: d.File, Line: d.Line}
	var f *Failure
	if kind == KindAssertion {
		f = Assertion(d.Expression, raw, origin, opts...)
		if t != nil {
			f.typ = t
		}
	} else {
		f = FromTrace(kind, t, d.Message, raw, origin, opts...)
	}
	f.status, f.statusText = d.Status, d.StatusText
	if d.External != nil {
		f.SetExternalData(*d.External)
	}
	return f, nil
}

// builtins resolves documented lineages back to the shared descriptors.
var builtins = map[string]*Type{
	TypeFailure.String():         TypeFailure,
	TypeError.String():           TypeError,
	TypeRuntimeError.String():    TypeRuntimeError,
	TypeAssertionFailed.String(): TypeAssertionFailed,
}

func typeFromDoc(lineage []TypeDoc) (*Type, error) {
	var t *Type
	for _, td := range lineage {
		if b, ok := builtins[td.Name]; ok && b.Parent == t && len(td.Caps) == 0 {
			t = b
			continue
		}
		var caps Capability
		for _, name := range td.Caps {
			c, err := ParseCapability(name)
			if err != nil {
				return nil, fmt.Errorf("failreport: document: %w", err)
			}
			caps |= c
		}
		t = &Type{Name: ParseName(td.Name, DefaultSep), Parent: t, Caps: caps}
	}
	return t, nil
}

func valueFromDoc(ad ArgDoc) (Value, error) {
	k, err := ParseValueKind(ad.Kind)
	if err != nil {
		return Value{}, err
	}
	v := Value{
		Kind:   k,
		Str:    ad.Str,
		Len:    ad.Len,
		Bool:   ad.Bool,
		Num:    ad.Num,
		Float:  ad.Float,
		GoType: ad.GoType,
	}
	if k == StringValue && v.Len == 0 {
		v.Len = len(v.Str)
	}
	if len(ad.Type) > 0 {
		if v.Type, err = typeFromDoc(ad.Type); err != nil {
			return Value{}, err
		}
	}
	if ad.Detail != nil {
		v.Detail, v.HasDetail = *ad.Detail, true
	}
	return v, nil
}
