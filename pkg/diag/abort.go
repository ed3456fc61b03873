package diag

import (
	"fmt"
)

type bailout struct{ err error }

// Abort stops conversion of current device.
// Use only for violated internal invariants, never for unsupported
// configuration.
func Abort(format string, args ...interface{}) {
	panic(bailout{fmt.Errorf(format, args...)})
}

// Catch runs f and converts an Abort inside f into an error.
// Other panics are resumed.
func Catch(f func()) (err error) {
	defer func() {
		if e := recover(); e != nil {
			b, ok := e.(bailout)
			if !ok {
				panic(e) // Resume same panic if it's not a bailout.
			}
			err = b.err
		}
	}()
	f()
	return nil
}
