//go:build linux || darwin || freebsd || netbsd || openbsd

package device

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// restartProcess execs the current binary in place with the same arguments
// and environment. It only returns on failure.
func restartProcess() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := unix.Exec(exe, os.Args, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", exe, err)
	}
	return nil
}
