package bridge

import "errors"

// fatalError signals a failure the loop cannot recover from in-process; the
// daemon exits non-zero so its supervisor restarts it.
type fatalError struct {
	op  string
	err error
}

func (e fatalError) Error() string { return e.op + ": " + e.err.Error() }

func (e fatalError) Unwrap() error { return e.err }

// IsFatal reports whether err requires a process restart.
func IsFatal(err error) bool {
	var fe fatalError
	return errors.As(err, &fe)
}
