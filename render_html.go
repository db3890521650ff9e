package failreport

import (
	"fmt"
	"html/template"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// TimeLayout formats report timestamps.
const TimeLayout = "02-01-2006 15:04:05"

// loopback lists the requester addresses allowed to see stack traces.
var loopback = map[string]struct{}{
	"127.0.0.1": {},
	"::1":       {},
	"localhost": {},
}

// IsLoopback reports whether addr is one of the addresses allowed to see
// stack traces. The comparison is exact: callers pass a bare host.
func IsLoopback(addr string) bool {
	_, ok := loopback[addr]
	return ok
}

// HTMLOptions are the request and host inputs of an HTML report.
type HTMLOptions struct {
	// RemoteAddr is the requesting client's host. The trace is shown only
	// for loopback requesters.
	RemoteAddr string
	// ServerSoftware is listed in the environment table when set.
	ServerSoftware string
	// Runtime describes the Go runtime; defaults to runtime.Version().
	Runtime string
	// Now is the report time; defaults to time.Now().
	Now time.Time
}

// RenderHTML returns a self-contained HTML debug page for f.
func RenderHTML(f *Failure, opts HTMLOptions) string {
	out, _ := safely(func() (string, error) { return renderHTML(f, opts) })
	return out
}

type htmlView struct {
	Title      string
	Assertion  bool
	Heading    []string
	Final      string
	File       string
	Line       int
	Lineage    []htmlAncestor
	Expression template.HTML
	Message    string

	External    string
	HasExternal bool

	ShowTrace bool
	Frames    []htmlFrame

	Runtime        string
	ServerSoftware string
	Time           string
}

type htmlAncestor struct {
	Name string
	Leaf bool
}

type htmlFrame struct {
	Short string
	Full  string
	File  string
	Line  string
	Dir   string
	Args  []htmlArg
}

type htmlArg struct {
	Label     string
	Summary   string
	Italic    bool
	Detail    string
	HasDetail bool
}

func renderHTML(f *Failure, opts HTMLOptions) (string, error) {
	c := ClassifyFailure(f)
	v := htmlView{
		Assertion:      f.Kind() == KindAssertion,
		File:           f.File(),
		Line:           f.Line(),
		External:       c.External,
		HasExternal:    c.HasExternal,
		ShowTrace:      IsLoopback(opts.RemoteAddr),
		Runtime:        opts.Runtime,
		ServerSoftware: opts.ServerSoftware,
	}
	if v.Runtime == "" {
		v.Runtime = fmt.Sprintf("%s (%s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	v.Time = now.Format(TimeLayout)

	where := fmt.Sprintf(" in %s on line %d", baseName(f.File()), f.Line())
	if v.Assertion {
		v.Title = c.Label() + where
		v.Expression = highlightExpression(c.Body)
	} else {
		v.Title = f.Type().Name.Simple + where
		v.Message = c.Body
		v.Lineage = ancestry(f.Type())
		if n := len(c.Title); n > 0 {
			v.Heading, v.Final = c.Title[:n-1], c.Title[n-1]
		}
	}

	if v.ShowTrace {
		muted := f.Muted()
		for _, fr := range f.Trace() {
			hf := htmlFrame{
				Short: fr.ShortSignature(),
				Full:  fr.Signature() + "()",
				File:  baseName(fr.File),
				Dir:   dirName(fr.File),
			}
			if fr.Line > 0 {
				hf.Line = strconv.Itoa(fr.Line)
			}
			for _, a := range ClassifyArguments(fr, muted) {
				hf.Args = append(hf.Args, htmlArgument(a))
			}
			v.Frames = append(v.Frames, hf)
		}
	}

	var sb strings.Builder
	if err := pageTemplate.Execute(&sb, v); err != nil {
		return "", fmt.Errorf("failreport: render html: %w", err)
	}
	return sb.String(), nil
}

// ancestry lists the type lineage oldest first. The root is omitted when
// the lineage has more than one entry; every entry except the leaf is
// compressed.
func ancestry(t *Type) []htmlAncestor {
	lineage := t.Lineage()
	if len(lineage) > 1 {
		lineage = lineage[1:]
	}
	out := make([]htmlAncestor, len(lineage))
	for i, a := range lineage {
		if i == len(lineage)-1 {
			out[i] = htmlAncestor{Name: a.Name.String(), Leaf: true}
			continue
		}
		out[i] = htmlAncestor{Name: Compress(a.Name)}
	}
	return out
}

func htmlArgument(a Argument) htmlArg {
	h := htmlArg{Label: a.TypeLabel, Summary: a.Summary}
	switch a.Category {
	case StringValue, SequenceValue:
		if a.TypeLabel != "" {
			h.Summary = "[" + a.Summary + "]"
		}
	case BoolValue, NullValue:
		h.Italic = true
	}
	if a.TypeLabel != "" && a.HasDetail {
		h.Detail, h.HasDetail = a.Detail, true
	}
	return h
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 em { color: red; }
td:first-child { font-weight: bold; white-space: nowrap; vertical-align: top; }
ul.Lineage { list-style: none; margin: 0; padding: 0; }
ul.Lineage li { display: inline; }
ul.Lineage li.Parent:after { content: " \00bb "; color: graytext; }
ul.Lineage li.Leaf { color: red; text-decoration: underline; }
div.Frame ul { font-size: 12px; }
div.Frame li { display: inline; }
div.Frame li.Arg:after { content: ", "; }
div.Frame li.Arg:last-child:after { content: none; }
.Label { color: red; }
code.Detail { display: block; white-space: pre; font-size: 10px; }
</style>
</head>
<body>
{{if .Assertion}}<h1>Assertion&middot;Failed</h1>
{{else}}<h1>{{range .Heading}}{{.}}&middot;{{end}}<em>{{.Final}}</em></h1>
{{end}}<table class="Failure">
<tr><td>Origin:</td><td>{{.File}} <strong>&lt;{{.Line}}&gt;</strong></td></tr>
{{if .Assertion}}<tr><td>Expression:</td><td><code>{{.Expression}}</code></td></tr>
{{else}}<tr><td>Type:</td><td><ul class="Lineage">{{range .Lineage}}{{if .Leaf}}<li class="Leaf"><strong>{{.Name}}</strong></li>{{else}}<li class="Parent">{{.Name}}</li>{{end}}{{end}}</ul></td></tr>
<tr class="Message"><td>Message:</td><td>{{.Message}}</td></tr>
{{end}}{{if .HasExternal}}<tr><td>External:</td><td><pre>{{.External}}</pre></td></tr>
{{end}}</table>
{{if .ShowTrace}}<h2>Stack Trace</h2>
{{range .Frames}}<div class="Frame">
<ul>
<li class="Function" title="{{.Full}} {{.File}}:{{.Line}}">{{.Short}}</li> (
{{range .Args}}<li class="Arg">{{if .Label}}<span class="Label">{{.Label}}</span>{{end}}{{if .Italic}}<em>{{.Summary}}</em>{{else}}{{.Summary}}{{end}}{{if .HasDetail}}<code class="Detail">{{.Detail}}</code>{{end}}</li>
{{end}})</ul>
<table class="Position">
<tr><td>FQN:</td><td>{{.Full}}</td></tr>
<tr><td>File:</td><td>{{.File}}</td></tr>
<tr><td>Line:</td><td>{{.Line}}</td></tr>
<tr><td>Directory:</td><td>{{.Dir}}</td></tr>
</table>
</div>
{{end}}{{end}}<h2>Environment</h2>
<table class="Environment">
<tr><td>Go:</td><td>{{.Runtime}}</td></tr>
{{if .ServerSoftware}}<tr><td>Server:</td><td>{{.ServerSoftware}}</td></tr>
{{end}}<tr><td>Time:</td><td>{{.Time}}</td></tr>
</table>
</body>
</html>
`))
