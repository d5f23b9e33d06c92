package bridge

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"zulubridge/internal/cache"
	"zulubridge/internal/controllink"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultClientAPIVersion = "2.0"
	defaultConnectTimeout   = 30 * time.Second
	defaultResetDelay       = 10 * time.Millisecond
	defaultPollInterval     = 50 * time.Millisecond
)

// Link is the part of the control-link client the orchestrator drives.
type Link interface {
	controllink.Requester
	ProcessMessages(h controllink.Handler) int
	// Ready fires after new messages arrive.
	Ready() <-chan struct{}
}

// Radio is the network interface the bridge serves on.
type Radio interface {
	// Init prepares the radio in station mode with power saving off.
	Init() error
	// Connect joins the network and returns the address to announce.
	Connect(ctx context.Context, ssid, password string) (string, error)
	LinkUp() bool
	Deinit() error
}

// Starter starts the HTTP server. Start is called once, after the first
// successful connect.
type Starter interface {
	Start() error
}

// Rebooter restarts the device after delay without blocking the caller.
type Rebooter interface {
	Reboot(delay time.Duration)
}

// Config encapsulates all tunables and collaborators for New.
type Config struct {
	ClientAPIVersion string
	// Fallbacks used when the device supplies no credentials.
	SSID     string
	Password string

	ConnectTimeout time.Duration
	ResetDelay     time.Duration
	// PollInterval bounds how long Run waits between steps with no traffic.
	PollInterval time.Duration

	Link     Link
	Radio    Radio
	Server   Starter
	Rebooter Rebooter

	Filenames *cache.Filenames
	Images    *cache.Images
	Status    *cache.StatusSnapshot

	Logger zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.ClientAPIVersion == "" {
		c.ClientAPIVersion = DefaultClientAPIVersion
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.ResetDelay <= 0 {
		c.ResetDelay = defaultResetDelay
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.Filenames == nil {
		c.Filenames = cache.NewFilenames(0, c.Logger)
	}
	if c.Images == nil {
		c.Images = cache.NewImages(nil, c.Logger)
	}
	if c.Status == nil {
		c.Status = cache.NewStatusSnapshot(0)
	}
	return c
}
