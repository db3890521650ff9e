package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xgx-io/failreport"
	"github.com/xgx-io/failreport/hook"
)

var demoKind string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Raise a sample failure through the failure handler",
	Long: `Demo installs the failure handler and raises one failure:

  panic    an index out of range inside a helper
  assert   a failed assertion
  trigger  a fatal triggered runtime error
  notice   a recoverable notice (logged, execution continues)
  error    an explicit failure with a silenced credential argument`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVarP(&demoKind, "kind", "k", "panic", "panic, assert, trigger, notice or error")
	demoRegistry.Silence(Credentials{})
}

// Account is passed to the demo failures as a visible argument.
type Account struct {
	ID    int
	Owner string
}

// Credentials is registered as silenced: it appears in reports by type only.
type Credentials struct {
	User     string
	Password string
}

var (
	typePayment  = failreport.NewType("failreport/demo/PaymentDeclined", failreport.TypeError)
	demoRegistry = failreport.NewRegistry()
)

func runDemo(cmd *cobra.Command, args []string) (err error) {
	exitCode := 0
	h, err := installHandler(cmd.ErrOrStderr(), cmd.OutOrStdout(), func(code int) { exitCode = code })
	if err != nil {
		return err
	}
	defer h.Restore()
	defer func() {
		if err == nil && exitCode != 0 {
			err = errExit{code: exitCode}
		}
	}()

	switch demoKind {
	case "panic":
		demoPanic(h)
	case "assert":
		h.EnableAssertions(true)
		if f := h.Guard(func() { demoAssert(h, []int{3, 1, 2}) }); f != nil {
			h.Report(f)
			exitCode = 1
		}
	case "trigger":
		demoTrigger(h)
	case "notice":
		f := h.Notice("cache directory   is\tnearly full")
		_, err = fmt.Fprint(cmd.ErrOrStderr(), failreport.RenderConsole(f))
	case "error":
		f := demoCharge(Account{ID: 42, Owner: "ACME"}, Credentials{User: "acme", Password: "hunter2"})
		h.Report(f)
		exitCode = 1
	default:
		return fmt.Errorf("unknown demo kind %q", demoKind)
	}
	return err
}

func demoPanic(h *hook.Handler) {
	defer h.Recover()
	parts := strings.Split("a,b", ",")
	_ = pick(parts, 5)
}

func pick(parts []string, i int) string { return parts[i] }

func demoAssert(h *hook.Handler, xs []int) {
	h.Assert(sorted(xs), "sorted(xs)")
}

func sorted(xs []int) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i-1] > xs[i] {
			return false
		}
	}
	return true
}

func demoTrigger(h *hook.Handler) {
	defer h.Recover()
	h.Trigger("configuration value 'timeout' is negative", hook.SevError)
}

func demoCharge(acct Account, creds Credentials) *failreport.Failure {
	return failreport.New(typePayment, "card declined by issuer",
		failreport.WithRegistry(demoRegistry),
		failreport.Args(acct, creds, 1999, "EUR"))
}
