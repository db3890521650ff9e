package failreport

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"
)

// XMLOptions are the caller-supplied inputs of an XML report.
type XMLOptions struct {
	// Timestamp is the time listed in the report; defaults to time.Now().
	Timestamp time.Time
	// Get, Post and Server are the request query, request body and
	// server/environment snapshots.
	Get    Snapshot
	Post   Snapshot
	Server Snapshot
}

// RenderXML returns the XML log record of f.
func RenderXML(f *Failure, opts XMLOptions) string {
	out, _ := safely(func() (string, error) { return renderXML(f, opts) })
	return out
}

type xmlReport struct {
	XMLName xml.Name  `xml:"exception"`
	Thrown  xmlThrown `xml:"thrown"`
	Class   string    `xml:"class"`
	Origin  xmlOrigin `xml:"origin"`
	Message string    `xml:"message"`
	Trace   xmlTrace  `xml:"trace"`
	Get     xmlValues `xml:"get"`
	Post    xmlValues `xml:"post"`
	Error   *xmlError `xml:"error"`
	Server  xmlValues `xml:"server"`
}

type xmlThrown struct {
	Timestamp int64  `xml:"timestamp,attr"`
	Text      string `xml:",chardata"`
}

type xmlOrigin struct {
	Line int    `xml:"line,attr"`
	File string `xml:",chardata"`
}

type xmlTrace struct {
	Muted bool      `xml:"muted,attr"`
	Calls []xmlCall `xml:"call"`
}

type xmlCall struct {
	Function  string        `xml:"function"`
	File      xmlFile       `xml:"file"`
	Arguments []xmlArgument `xml:"arguments>argument"`
}

type xmlFile struct {
	Line string `xml:"line,attr"`
	Path string `xml:",chardata"`
}

type xmlArgument struct {
	Type    string `xml:"type,attr"`
	Silent  bool   `xml:"silent,attr"`
	Summary string `xml:",chardata"`
	Dump    string `xml:",cdata"`
}

type xmlError struct {
	Text string `xml:",chardata"`
}

type xmlValues struct {
	Values []xmlValue `xml:"value"`
}

type xmlValue struct {
	Name string `xml:"name,attr"`
	Text string `xml:",cdata"`
}

func renderXML(f *Failure, opts XMLOptions) (string, error) {
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	muted := f.Muted()

	r := xmlReport{
		Thrown:  xmlThrown{Timestamp: ts.Unix(), Text: ts.Format(TimeLayout)},
		Class:   xmlText(f.TypeName()),
		Origin:  xmlOrigin{Line: f.Line(), File: xmlText(f.File())},
		Message: xmlText(f.Message()),
		Trace:   xmlTrace{Muted: muted},
		Get:     xmlSnapshot(opts.Get),
		Post:    xmlSnapshot(opts.Post),
		Server:  xmlSnapshot(opts.Server),
	}
	if data, ok := f.ExternalData(); ok {
		r.Error = &xmlError{Text: xmlText(data)}
	}

	for _, fr := range f.Trace() {
		call := xmlCall{
			Function: xmlText(fr.Signature()),
			File:     xmlFile{Path: xmlText(fr.File)},
		}
		if fr.Line > 0 {
			call.File.Line = strconv.Itoa(fr.Line)
		}
		for _, v := range fr.Args {
			call.Arguments = append(call.Arguments, xmlArgumentOf(v, muted))
		}
		r.Trace.Calls = append(r.Trace.Calls, call)
	}

	out, err := xml.MarshalIndent(r, "", "\t")
	if err != nil {
		return "", fmt.Errorf("failreport: render xml: %w", err)
	}
	return xml.Header + string(out), nil
}

func xmlArgumentOf(v Value, muted bool) xmlArgument {
	a := ClassifyArgument(v, muted)
	x := xmlArgument{Type: v.TypeName(), Silent: a.Redacted}
	if a.Redacted {
		x.Summary = xmlText(silentSummary(v))
		return x
	}
	if a.HasDetail {
		x.Dump = xmlText(a.Detail)
	}
	return x
}

// silentSummary is the shape-only text of a redacted argument.
func silentSummary(v Value) string {
	switch v.Kind {
	case ObjectValue:
		if v.Type != nil {
			return v.Type.String()
		}
		return v.GoType
	case SequenceValue:
		return "array[" + strconv.Itoa(v.Len) + "]"
	case StringValue:
		return "string[" + strconv.Itoa(v.Len) + "]"
	case BoolValue:
		return strconv.FormatBool(v.Bool)
	case NullValue:
		return "null"
	case NumberValue:
		return v.Num
	}
	return ""
}

func xmlSnapshot(s Snapshot) xmlValues {
	out := xmlValues{Values: make([]xmlValue, 0, len(s))}
	for _, fld := range s {
		out.Values = append(out.Values, xmlValue{Name: xmlText(fld.Name), Text: xmlText(fld.Value)})
	}
	return out
}
