// predicates.go - classification helpers over arbitrary errors.
//
// Every predicate looks through wrapping with errors.As, so a failure
// wrapped by fmt.Errorf("%w") or errors.Join is still recognized.
package failreport

// KindOf returns the kind of the first failure in err's chain.
func KindOf(err error) (Kind, bool) {
	f, ok := AsFailure(err)
	if !ok {
		return 0, false
	}
	return f.Kind(), true
}

// IsAssertion reports whether err holds a failed assertion.
func IsAssertion(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindAssertion
}

// IsRuntime reports whether err holds a converted runtime error.
func IsRuntime(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindRuntime
}

// HasCapability reports whether the type of the first failure in err's chain
// carries c.
func HasCapability(err error, c Capability) bool {
	f, ok := AsFailure(err)
	return ok && f.Type().Has(c)
}

// IsMuted reports whether err's failure redacts its whole trace.
func IsMuted(err error) bool { return HasCapability(err, CapSilenced) }

// IsExternal reports whether err's failure carries external data.
func IsExternal(err error) bool {
	f, ok := AsFailure(err)
	if !ok {
		return false
	}
	_, has := f.ExternalData()
	return has
}
