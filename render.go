package failreport

import (
	"fmt"
)

// renderFunc produces a complete report or fails.
type renderFunc func() (string, error)

// safely runs render and never lets a rendering failure escape: a returned
// error or a panic is degraded to the message of that secondary failure,
// which is returned alongside the error so callers can log it.
func safely(render renderFunc) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
			out = secondaryMessage(err)
		}
	}()
	out, err = render()
	if err != nil {
		out = secondaryMessage(err)
	}
	return out, err
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

func secondaryMessage(err error) string {
	if f, ok := AsFailure(err); ok {
		return f.Message()
	}
	return NormalizeSpace(err.Error())
}
