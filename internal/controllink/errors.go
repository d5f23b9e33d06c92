package controllink

import "errors"

// frameError reports a malformed frame on the wire.
type frameError struct {
	msg string
	err error
}

func (e frameError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e frameError) Unwrap() error { return e.err }

// IsFrameError reports whether err was caused by a malformed frame.
func IsFrameError(err error) bool {
	var fe frameError
	return errors.As(err, &fe)
}

// ErrConnectionClosed is returned when reading from a closed WebSocket link.
var ErrConnectionClosed = errors.New("control link connection closed")
