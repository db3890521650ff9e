package failreport

import "testing"

func BenchmarkNew(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = New(nil, "boom")
	}
}

func BenchmarkCompress(b *testing.B) {
	n := ParseName("github.com/acme/shop/internal/billing/InvoiceError", DefaultSep)
	b.ReportAllocs()
	for b.Loop() {
		_ = Compress(n)
	}
}

func BenchmarkRenderConsole(b *testing.B) {
	f := FromTrace(KindThrown, typeInvoiceError, "invoice could not be settled", sampleTrace(), Location{File: "invoice.go", Line: 90})
	b.ReportAllocs()
	for b.Loop() {
		_ = RenderConsole(f)
	}
}

func BenchmarkRenderHTML(b *testing.B) {
	f := FromTrace(KindThrown, typeInvoiceError, "invoice could not be settled", sampleTrace(), Location{File: "invoice.go", Line: 90})
	opts := HTMLOptions{RemoteAddr: "127.0.0.1", Now: fixedTime}
	b.ReportAllocs()
	for b.Loop() {
		_ = RenderHTML(f, opts)
	}
}

func BenchmarkRenderXML(b *testing.B) {
	f := FromTrace(KindThrown, typeInvoiceError, "invoice could not be settled", sampleTrace(), Location{File: "invoice.go", Line: 90})
	opts := XMLOptions{Timestamp: fixedTime}
	b.ReportAllocs()
	for b.Loop() {
		_ = RenderXML(f, opts)
	}
}

func BenchmarkValueOf(b *testing.B) {
	arg := struct {
		ID    int
		Lines []string
	}{7, []string{"a", "b"}}
	b.ReportAllocs()
	for b.Loop() {
		_ = ValueOf(arg)
	}
}
