// doc.go - package documentation for failreport
//
// Package failreport captures failures in a running process and renders them
// as reports: a plain-text console block, a self-contained HTML debug page
// and a structured XML log record.
//
// # Pipeline
//
// A failure is captured with its stack trace and argument snapshots, then
// every report is produced by the same steps:
//
//	capture → ClassifyFailure → Normalize → ClassifyArgument → render
//
// Capture happens at construction (New, Errorf, Runtime, Assertion, From,
// Wrap). Everything after it is a pure computation over the captured data,
// so renderers are deterministic given their options and safe to call from
// several goroutines.
//
// # Failure kinds
//
//	+------------------+--------------------------------------------------+
//	| Kind             | Raised by                                        |
//	+------------------+--------------------------------------------------+
//	| KindThrown       | New, Errorf, From, Wrap                          |
//	| KindRuntime      | panics and Trigger, converted by package hook    |
//	| KindAssertion    | hook.Assert                                      |
//	+------------------+--------------------------------------------------+
//
// Any kind may additionally carry external data (SetExternalData) or map to
// an HTTP status (types with CapHTTP).
//
// # Trace normalization
//
// Traces are captured innermost first. Normalize removes the frames of the
// handling machinery: two for assertions (evaluation and dispatch), one for
// runtime errors (the conversion handler) plus the Trigger frame and, when
// the error was raised by the notice entry point, the Notice frame, whose
// call site then becomes the failure's origin. Anonymous functions display
// as {closure}.
//
// # Redaction
//
// Types carry capabilities. An argument whose type has CapSilenced shows only
// its shape (a compressed type name, a length); a failure whose type has
// CapSilenced mutes its whole trace. Objects whose type cannot be resolved
// are redacted.
//
//	reg := failreport.NewRegistry()
//	reg.Silence(Credentials{})
//	f := failreport.New(ErrLogin, "login refused",
//		failreport.WithRegistry(reg), failreport.Args(user, creds))
//
// # Formatting
//
//	fmt.Printf("%v\n", f)   // RuntimeError: index out of range
//	fmt.Printf("%+v\n", f)  // console report, then one per cause
//
// # Dispatch
//
// Dispatcher chooses the output channel: console reports go to stderr
// (stdout when stderr fails), HTTP responses carry the failure's status and
// the HTML page, whose stack trace is visible to loopback clients only.
package failreport
