// Package device restarts the bridge process when the device asks for it.
package device

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ExitRestart is the exit status used when the process cannot re-exec itself;
// the supervisor is expected to start it again.
const ExitRestart = 3

// Rebooter replaces the running process with a fresh copy of itself.
type Rebooter struct {
	log     zerolog.Logger
	restart func() error
	exit    func(code int)
	once    sync.Once
}

// NewRebooter returns a Rebooter that re-executes the current binary.
func NewRebooter(log zerolog.Logger) *Rebooter {
	return &Rebooter{log: log, restart: restartProcess, exit: os.Exit}
}

// Reboot schedules a restart after delay and returns at once. Only the first
// call has an effect.
func (r *Rebooter) Reboot(delay time.Duration) {
	r.once.Do(func() {
		r.log.Warn().Dur("delay", delay).Msg("reboot scheduled")
		time.AfterFunc(delay, r.fire)
	})
}

func (r *Rebooter) fire() {
	if err := r.restart(); err != nil {
		r.log.Error().Err(err).Int("exit", ExitRestart).Msg("re-exec failed, exiting for supervisor restart")
		r.exit(ExitRestart)
	}
}
