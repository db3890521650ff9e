package failreport

import (
	"testing"
	"time"
)

// fixedTime is the timestamp used by deterministic renders.
var fixedTime = time.Date(2024, time.March, 9, 14, 5, 30, 0, time.UTC)

func pathName(s string) *Name {
	n := ParseName(s, DefaultSep)
	return &n
}

// sampleTrace is an innermost-first trace as a Go capture would produce it,
// without handler frames.
func sampleTrace() Trace {
	return Trace{
		{Type: pathName("acme.io/shop/billing"), Op: OpFunc, Function: "charge", File: "/src/shop/billing/invoice.go", Line: 88,
			Args: Values("ACME-7", []int{1, 2, 3}, true, nil, 12.5)},
		{Type: pathName("acme.io/shop/billing/Invoice"), Op: OpPointer, Function: "Settle", File: "/src/shop/billing/settle.go", Line: 41,
			Args: Values(struct{ ID int }{7}, []string{})},
		{Type: pathName("acme.io/shop/cmd/shop"), Op: OpFunc, Function: "main.{closure}", File: "/src/shop/cmd/shop/main.go", Line: 19},
	}
}

var typeInvoiceError = NewType("acme.io/shop/billing/InvoiceError", TypeError)

func sampleFailure(t *testing.T) *Failure {
	t.Helper()
	return FromTrace(KindThrown, typeInvoiceError, "invoice\n  could not be\tsettled",
		sampleTrace(), Location{File: "/src/shop/billing/invoice.go", Line: 90})
}
