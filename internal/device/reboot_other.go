//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package device

import "errors"

func restartProcess() error {
	return errors.New("in-place restart not supported on this platform")
}
