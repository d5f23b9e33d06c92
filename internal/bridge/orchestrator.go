package bridge

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"zulubridge/internal/cache"
	"zulubridge/internal/controllink"
)

// Orchestrator runs the bridge lifecycle: version handshake, credential
// retrieval, radio bring-up and serving, with recovery on link loss. Step and
// the message callbacks run on one goroutine; State may be read from any.
type Orchestrator struct {
	cfg Config
	log zerolog.Logger
	pub EventPublisher

	link     Link
	radio    Radio
	server   Starter
	rebooter Rebooter

	filenames *cache.Filenames
	images    *cache.Images
	status    *cache.StatusSnapshot
	version   *VersionRecord
	creds     *Credentials

	state         atomic.Uint32
	serverStarted bool
	resetPending  atomic.Bool
}

// New constructs an Orchestrator in StateAwaitAPIVersion. Link, Radio and
// Server are required.
func New(cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()
	o := &Orchestrator{
		cfg:       cfg,
		log:       cfg.Logger,
		pub:       noopPublisher{},
		link:      cfg.Link,
		radio:     cfg.Radio,
		server:    cfg.Server,
		rebooter:  cfg.Rebooter,
		filenames: cfg.Filenames,
		images:    cfg.Images,
		status:    cfg.Status,
		version:   NewVersionRecord(cfg.ClientAPIVersion),
		creds:     NewCredentials(cfg.SSID, cfg.Password),
	}
	observeState(StateAwaitAPIVersion)
	return o
}

// SetEventPublisher sets a custom publisher; nil resets to no-op.
func (o *Orchestrator) SetEventPublisher(p EventPublisher) {
	if p == nil {
		o.pub = noopPublisher{}
		return
	}
	o.pub = p
}

func (o *Orchestrator) State() State { return State(o.state.Load()) }

// Serving reports whether the HTTP surface is up and the radio link is live.
func (o *Orchestrator) Serving() bool { return o.State() == StateServing }

func (o *Orchestrator) Version() *VersionRecord     { return o.version }
func (o *Orchestrator) Credentials() *Credentials   { return o.creds }
func (o *Orchestrator) Filenames() *cache.Filenames { return o.filenames }
func (o *Orchestrator) Images() *cache.Images       { return o.images }
func (o *Orchestrator) Status() *cache.StatusSnapshot {
	return o.status
}

func (o *Orchestrator) setState(to State) {
	from := State(o.state.Swap(uint32(to)))
	if from == to {
		return
	}
	observeState(to)
	transitionsTotal.WithLabelValues(to.String()).Inc()
	o.log.Info().Str("from", from.String()).Str("to", to.String()).Msg("state change")
	o.pub.Publish(Event{Name: "state_change", State: to, Fields: map[string]any{"from": from.String()}})
}

func (o *Orchestrator) enqueue(kind controllink.Kind, payload []byte) bool {
	if o.link.EnqueueRequest(kind, payload) {
		return true
	}
	o.log.Warn().Str("kind", kind.String()).Str("state", o.State().String()).
		Msg("failed to add request to output queue")
	return false
}

// Step executes one state action. It does not block except for the bounded
// radio connect. A returned error satisfying IsFatal requires a restart.
func (o *Orchestrator) Step(ctx context.Context) error {
	switch o.State() {
	case StateAwaitAPIVersion:
		o.enqueue(controllink.KindAnnounceVersion, []byte(o.cfg.ClientAPIVersion))
		o.enqueue(controllink.KindFetchSSID, nil)
		o.setState(StateAwaitSSID)

	case StateAwaitSSID:
		o.link.ProcessMessages(o)
		if o.creds.SSID() == "" {
			return nil
		}
		// retried next step if the queue is full
		if !o.enqueue(controllink.KindFetchPassword, nil) {
			return nil
		}
		o.setState(StateAwaitPassword)

	case StateAwaitPassword:
		o.link.ProcessMessages(o)
		if o.creds.Password() == "" {
			return nil
		}
		// subscribe now so status flows as soon as we are connected
		o.enqueue(controllink.KindSubscribeStatus, nil)
		o.setState(StateRadioInit)

	case StateRadioInit:
		if err := o.radio.Init(); err != nil {
			o.log.Error().Err(err).Msg("radio init failed")
			o.pub.Publish(Event{Name: "radio_init_failed", State: StateRadioInit, Fields: map[string]any{"error": err.Error()}})
			return fatalError{op: "radio init", err: err}
		}
		o.setState(StateRadioConnecting)

	case StateRadioConnecting:
		return o.connect(ctx)

	case StateServing:
		o.link.ProcessMessages(o)
		if o.radio.LinkUp() {
			return nil
		}
		linkLossTotal.Inc()
		o.log.Warn().Msg("radio link down")
		o.enqueue(controllink.KindLinkDown, nil)
		if err := o.radio.Deinit(); err != nil {
			o.log.Warn().Err(err).Msg("radio deinit failed")
		}
		o.pub.Publish(Event{Name: "link_down", State: StateServing})
		o.setState(StateRadioInit)
	}
	return nil
}

func (o *Orchestrator) connect(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, o.cfg.ConnectTimeout)
	defer cancel()
	o.log.Info().Str("ssid", o.creds.SSID()).Msg("connecting radio")
	ip, err := o.radio.Connect(cctx, o.creds.SSID(), o.creds.Password())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		connectFailuresTotal.Inc()
		o.log.Warn().Err(err).Msg("radio connect failed")
		o.pub.Publish(Event{Name: "radio_connect_failed", State: StateRadioConnecting, Fields: map[string]any{"error": err.Error()}})
		return nil
	}
	o.log.Info().Str("ip", ip).Msg("radio connected")
	o.enqueue(controllink.KindIPAddress, []byte(ip))
	if !o.serverStarted {
		if err := o.server.Start(); err != nil {
			return fatalError{op: "http server start", err: err}
		}
		o.serverStarted = true
		o.log.Info().Msg("http server initialized")
	}
	o.pub.Publish(Event{Name: "connected", State: StateRadioConnecting, Fields: map[string]any{"ip": ip}})
	o.setState(StateServing)
	return nil
}

// Run steps until ctx is done or a fatal error occurs. Between steps that do
// not change state it waits for link traffic or the poll interval.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()
	for {
		before := o.State()
		if err := o.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if o.State() != before {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.link.Ready():
		case <-ticker.C:
		}
	}
}
