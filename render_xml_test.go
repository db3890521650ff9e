package failreport

import (
	"encoding/xml"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parsedReport is the subset of an XML report the tests read back.
type parsedReport struct {
	XMLName xml.Name `xml:"exception"`
	Thrown  struct {
		Timestamp int64  `xml:"timestamp,attr"`
		Text      string `xml:",chardata"`
	} `xml:"thrown"`
	Class  string `xml:"class"`
	Origin struct {
		Line int    `xml:"line,attr"`
		File string `xml:",chardata"`
	} `xml:"origin"`
	Message string `xml:"message"`
	Trace   struct {
		Muted bool `xml:"muted,attr"`
		Calls []struct {
			Function string `xml:"function"`
			File     struct {
				Line string `xml:"line,attr"`
				Path string `xml:",chardata"`
			} `xml:"file"`
			Arguments []parsedArgument `xml:"arguments>argument"`
		} `xml:"call"`
	} `xml:"trace"`
	Get    []parsedValue `xml:"get>value"`
	Post   []parsedValue `xml:"post>value"`
	Error  *string       `xml:"error"`
	Server []parsedValue `xml:"server>value"`
}

type parsedArgument struct {
	Type   string `xml:"type,attr"`
	Silent bool   `xml:"silent,attr"`
	Text   string `xml:",chardata"`
}

type parsedValue struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

func parseXML(t *testing.T, s string) parsedReport {
	t.Helper()
	require.True(t, strings.HasPrefix(s, xml.Header), "missing XML declaration")
	var r parsedReport
	require.NoError(t, xml.Unmarshal([]byte(s), &r))
	return r
}

func traceSection(t *testing.T, s string) string {
	t.Helper()
	start := strings.Index(s, "<trace")
	end := strings.Index(s, "</trace>")
	require.True(t, start >= 0 && end > start, "no trace section")
	return s[start:end]
}

func TestRenderXML_RoundTrip(t *testing.T) {
	t.Parallel()

	f := sampleFailure(t)
	r := parseXML(t, RenderXML(f, XMLOptions{Timestamp: fixedTime}))

	assert.Equal(t, f.TypeName(), r.Class)
	assert.Equal(t, f.Message(), r.Message)
	assert.Equal(t, "acme.io/shop/billing/InvoiceError", r.Class)
	assert.Equal(t, "invoice could not be settled", r.Message)
	assert.Equal(t, fixedTime.Unix(), r.Thrown.Timestamp)
	assert.Equal(t, "09-03-2024 14:05:30", r.Thrown.Text)
	assert.Equal(t, 90, r.Origin.Line)
	assert.Equal(t, "/src/shop/billing/invoice.go", r.Origin.File)
	assert.Nil(t, r.Error)
}

func TestRenderXML_Trace(t *testing.T) {
	t.Parallel()

	r := parseXML(t, RenderXML(sampleFailure(t), XMLOptions{Timestamp: fixedTime}))

	assert.False(t, r.Trace.Muted)
	require.Len(t, r.Trace.Calls, 3)

	first := r.Trace.Calls[0]
	assert.Equal(t, "acme.io/shop/billing.charge", first.Function)
	assert.Equal(t, "88", first.File.Line)
	assert.Equal(t, "/src/shop/billing/invoice.go", first.File.Path)

	want := []parsedArgument{
		{Type: "string", Text: "ACME-7"},
		{Type: "array", Text: first.Arguments[1].Text},
		{Type: "boolean", Text: "true"},
		{Type: "NULL"},
		{Type: "double", Text: "12.5"},
	}
	if diff := cmp.Diff(want, first.Arguments); diff != "" {
		t.Errorf("arguments mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, first.Arguments[1].Text, "[]int")

	assert.Equal(t, "acme.io/shop/billing/Invoice->Settle", r.Trace.Calls[1].Function)
	assert.Equal(t, "acme.io/shop/cmd/shop.{closure}", r.Trace.Calls[2].Function)
	assert.Empty(t, r.Trace.Calls[2].Arguments)
}

func TestRenderXML_Muted(t *testing.T) {
	t.Parallel()

	muted := NewType("acme.io/auth/LoginFailed", TypeError, CapSilenced)
	f := FromTrace(KindThrown, muted, "denied", sampleTrace(), Location{File: "login.go", Line: 2})
	out := RenderXML(f, XMLOptions{Timestamp: fixedTime})

	trace := traceSection(t, out)
	assert.Contains(t, trace, `<trace muted="true">`)
	assert.Equal(t, 7, strings.Count(trace, "<argument "))
	assert.Equal(t, 7, strings.Count(trace, `silent="true"`))
	assert.NotContains(t, trace, `silent="false"`)
	assert.NotContains(t, trace, "<![CDATA[")
	assert.NotContains(t, out, "ACME-7")

	r := parseXML(t, out)
	args := r.Trace.Calls[0].Arguments
	require.Len(t, args, 5)
	assert.Equal(t, "string[6]", args[0].Text)
	assert.Equal(t, "array[3]", args[1].Text)
	assert.Equal(t, "true", args[2].Text)
	assert.Equal(t, "null", args[3].Text)
	assert.Equal(t, "12.5", args[4].Text)
	assert.Equal(t, "struct { ID int }", r.Trace.Calls[1].Arguments[0].Text)
}

type credentials struct{ Password string }

func TestRenderXML_SilencedArgument(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Silence(credentials{})
	raw := Trace{{Function: "login", File: "auth.go", Line: 5, Args: reg.Values(credentials{"hunter2"}, "alice")}}
	f := FromTrace(KindThrown, nil, "denied", raw, Location{File: "auth.go", Line: 4})
	out := RenderXML(f, XMLOptions{Timestamp: fixedTime})

	assert.Contains(t, traceSection(t, out), `<trace muted="false">`)
	assert.NotContains(t, out, "hunter2")

	args := parseXML(t, out).Trace.Calls[0].Arguments
	require.Len(t, args, 2)
	assert.Equal(t, parsedArgument{Type: "object", Silent: true, Text: "github.com/xgx-io/failreport/credentials"}, args[0])
	assert.Equal(t, parsedArgument{Type: "string", Text: "alice"}, args[1])
}

func TestRenderXML_Snapshots(t *testing.T) {
	t.Parallel()

	f := sampleFailure(t)
	f.SetExternalData("ORA-00942: table or view does not exist")
	out := RenderXML(f, XMLOptions{
		Timestamp: fixedTime,
		Get:       RequestSnapshot(url.Values{"id": {"7", "8"}, "b": {"x"}}),
		Post:      SnapshotKV("amount", 12.5),
		Server:    EnvironSnapshot([]string{"PATH=/usr/bin", "HOME=/root"}),
	})
	r := parseXML(t, out)

	assert.Equal(t, []parsedValue{{"b", "x"}, {"id", "7"}, {"id", "8"}}, r.Get)
	assert.Equal(t, []parsedValue{{"amount", "12.5"}}, r.Post)
	assert.Equal(t, []parsedValue{{"HOME", "/root"}, {"PATH", "/usr/bin"}}, r.Server)
	require.NotNil(t, r.Error)
	assert.Equal(t, "ORA-00942: table or view does not exist", *r.Error)
}

func TestRenderXML_Transcoding(t *testing.T) {
	t.Parallel()

	f := FromTrace(KindThrown, nil, "caf\xe9 cr\xe8me", nil, Location{File: "menu.go", Line: 1})
	r := parseXML(t, RenderXML(f, XMLOptions{Timestamp: fixedTime}))
	assert.Equal(t, "café crème", r.Message)

	f = FromTrace(KindThrown, nil, "déjà vu\x00", nil, Location{File: "menu.go", Line: 1})
	r = parseXML(t, RenderXML(f, XMLOptions{Timestamp: fixedTime}))
	assert.Equal(t, "déjà vu\uFFFD", r.Message, "valid UTF-8 is not converted twice")
}

func TestToUTF8(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", toUTF8("plain"))
	assert.Equal(t, "naïve", toUTF8("naïve"))
	assert.Equal(t, "naïve", toUTF8("na\xefve"))
	assert.Equal(t, "€5", toUTF8("\x805"))
}
