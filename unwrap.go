// unwrap.go - traversal of failure cause chains.
//
// Cause chains are singly linked and acyclic: WithCause refuses links that
// would close a loop, and a cause set at construction cannot refer to a
// failure that does not exist yet. Traversal still tracks visited failures
// and stops at maxChain links, so a chain built by other means cannot hang a
// report.
package failreport

// maxChain bounds cause-chain walks.
const maxChain = 256

// Chain returns f followed by its causes, outermost first. A nil f yields
// nil.
func Chain(f *Failure) []*Failure {
	var out []*Failure
	Walk(f, func(c *Failure) bool {
		out = append(out, c)
		return true
	})
	return out
}

// Walk visits f and each of its causes in order until fn returns false.
func Walk(f *Failure, fn func(*Failure) bool) {
	seen := make(map[*Failure]struct{}, 4)
	for cur := f; cur != nil && len(seen) < maxChain; cur = cur.cause {
		if _, dup := seen[cur]; dup {
			return
		}
		seen[cur] = struct{}{}
		if !fn(cur) {
			return
		}
	}
}

// Root returns the innermost cause of f, or f itself when it has none.
func Root(f *Failure) *Failure {
	var root *Failure
	Walk(f, func(c *Failure) bool {
		root = c
		return true
	})
	return root
}

// chainContains reports whether target appears in the chain starting at
// from.
func chainContains(from, target *Failure) bool {
	found := false
	Walk(from, func(c *Failure) bool {
		found = c == target
		return !found
	})
	return found
}
