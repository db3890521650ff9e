// wrap.go - conversion of arbitrary errors into failures.
//
// Foreign errors keep working with errors.Is and errors.As: the failure
// built for them unwraps to the original error.
package failreport

import (
	"errors"
	"reflect"
)

// AsFailure finds the first *Failure in err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) && f != nil {
		return f, true
	}
	return nil, false
}

// From converts err into a failure positioned at the caller.
//   - nil → nil
//   - an error whose chain holds a *Failure → that failure
//   - any other error → a KindThrown failure whose type is derived from the
//     error's dynamic type, below TypeError
func From(err error, opts ...Option) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := AsFailure(err); ok {
		return f
	}
	o := collect(opts)
	raw, loc := captureTrace(o.skip+1, defaultMaxDepth)
	f := build(KindThrown, foreignType(err, o.registry), err.Error(), raw, loc, o)
	f.wrapped = err
	return f
}

// Wrap raises a failure of type t at the caller's position, caused by err.
// A nil err yields a failure without cause.
func Wrap(err error, t *Type, msg string, opts ...Option) *Failure {
	var cause *Failure
	if err != nil {
		cause = From(err, Skip(1))
	}
	o := collect(opts)
	raw, loc := captureTrace(o.skip+1, defaultMaxDepth)
	if cause != nil && o.cause == nil {
		o.cause = cause
	}
	return build(KindThrown, t, msg, raw, loc, o)
}

func foreignType(err error, r *Registry) *Type {
	if r == nil {
		r = DefaultRegistry
	}
	rt := reflect.TypeOf(err)
	r.mu.RLock()
	t, ok := r.types[baseType(rt)]
	r.mu.RUnlock()
	if ok {
		return t
	}
	return &Type{Name: nameOfType(rt), Parent: TypeError}
}
