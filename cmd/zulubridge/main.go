package main

import (
	"os"

	"zulubridge/internal/bridge"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status. Fatal
// orchestration errors get their own status so supervisors can tell a broken
// radio from a bad flag.
func exitCode(err error) int {
	if bridge.IsFatal(err) {
		return 2
	}
	return 1
}
