// Package radio drives the network interface the bridge serves on. On a
// host the operating system owns association with the access point; a
// Station waits for its interface to come up with an IPv4 address and
// watches it for link loss.
package radio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultPollInterval = 250 * time.Millisecond

// ErrNoInterface is returned by Init when no usable interface exists.
var ErrNoInterface = errors.New("no usable network interface")

// Interfaces lists network interfaces and their addresses.
type Interfaces interface {
	Interfaces() ([]net.Interface, error)
	Addrs(ifi net.Interface) ([]net.Addr, error)
}

type hostInterfaces struct{}

func (hostInterfaces) Interfaces() ([]net.Interface, error)        { return net.Interfaces() }
func (hostInterfaces) Addrs(ifi net.Interface) ([]net.Addr, error) { return ifi.Addrs() }

// Options configures a Station.
type Options struct {
	// Interface names the interface to use; empty selects a non-loopback
	// interface, keeping the previous choice across re-init.
	Interface string
	// PollInterval is how often Connect re-checks the interface.
	PollInterval time.Duration
	Source       Interfaces
	Logger       zerolog.Logger
}

// Station is a network interface in station mode.
type Station struct {
	want string
	poll time.Duration
	src  Interfaces
	log  zerolog.Logger

	mu    sync.Mutex
	iface string
	// last is the interface picked by the previous Init; auto-select keeps
	// it across Deinit so a lost address does not move the bridge elsewhere.
	last string
}

// NewStation returns a station for opts.
func NewStation(opts Options) *Station {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Source == nil {
		opts.Source = hostInterfaces{}
	}
	return &Station{want: opts.Interface, poll: opts.PollInterval, src: opts.Source, log: opts.Logger}
}

// Init resolves the interface to use.
func (s *Station) Init() error {
	name, err := s.resolve()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.iface, s.last = name, name
	s.mu.Unlock()
	// power saving is managed by the host network stack
	s.log.Info().Str("interface", name).Msg("radio initialized in station mode")
	return nil
}

func (s *Station) resolve() (string, error) {
	ifs, err := s.src.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	if s.want != "" {
		for _, ifi := range ifs {
			if ifi.Name == s.want {
				return ifi.Name, nil
			}
		}
		return "", fmt.Errorf("%w: %q not found", ErrNoInterface, s.want)
	}
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	// Prefer the previous choice, then an interface that already has an
	// address, then one that is up, then any. Connect waits for the address.
	var up, fallback string
	for _, ifi := range ifs {
		if ifi.Flags&net.FlagLoopback != 0 {
			continue
		}
		if ifi.Name == last {
			return last, nil
		}
		if ifi.Flags&net.FlagUp != 0 {
			if _, ok := s.ipv4(ifi); ok {
				return ifi.Name, nil
			}
			if up == "" {
				up = ifi.Name
			}
		}
		if fallback == "" {
			fallback = ifi.Name
		}
	}
	switch {
	case up != "":
		return up, nil
	case fallback != "":
		return fallback, nil
	}
	return "", ErrNoInterface
}

// Connect waits until the interface is up with an IPv4 address and returns
// that address. It gives up when ctx is done.
func (s *Station) Connect(ctx context.Context, ssid, password string) (string, error) {
	name := s.name()
	if name == "" {
		return "", errors.New("radio not initialized")
	}
	s.log.Debug().Str("interface", name).Str("ssid", ssid).Msg("waiting for network")
	t := time.NewTicker(s.poll)
	defer t.Stop()
	for {
		if ip, ok := s.addr(name); ok {
			return ip, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("connect %s: %w", name, ctx.Err())
		case <-t.C:
		}
	}
}

// LinkUp reports whether the interface is up with an IPv4 address.
func (s *Station) LinkUp() bool {
	name := s.name()
	if name == "" {
		return false
	}
	_, ok := s.addr(name)
	return ok
}

// Deinit releases the interface. The next Init resolves it again.
func (s *Station) Deinit() error {
	s.mu.Lock()
	name := s.iface
	s.iface = ""
	s.mu.Unlock()
	s.log.Info().Str("interface", name).Msg("radio deinitialized")
	return nil
}

func (s *Station) name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iface
}

func (s *Station) addr(name string) (string, bool) {
	ifs, err := s.src.Interfaces()
	if err != nil {
		return "", false
	}
	for _, ifi := range ifs {
		if ifi.Name != name {
			continue
		}
		if ifi.Flags&net.FlagUp == 0 {
			return "", false
		}
		return s.ipv4(ifi)
	}
	return "", false
}

func (s *Station) ipv4(ifi net.Interface) (string, bool) {
	addrs, err := s.src.Addrs(ifi)
	if err != nil {
		return "", false
	}
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() {
			return ip4.String(), true
		}
	}
	return "", false
}
