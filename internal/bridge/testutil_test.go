package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zulubridge/internal/controllink"
)

type fakeLink struct {
	mu    sync.Mutex
	inbox []controllink.Request
	sent  []controllink.Request
	full  map[controllink.Kind]bool
	ready chan struct{}
}

func newFakeLink() *fakeLink {
	return &fakeLink{full: map[controllink.Kind]bool{}, ready: make(chan struct{}, 1)}
}

func (l *fakeLink) push(kind controllink.Kind, payload string) {
	l.mu.Lock()
	l.inbox = append(l.inbox, controllink.Request{Kind: kind, Payload: []byte(payload)})
	l.mu.Unlock()
	select {
	case l.ready <- struct{}{}:
	default:
	}
}

func (l *fakeLink) setFull(kind controllink.Kind, full bool) {
	l.mu.Lock()
	l.full[kind] = full
	l.mu.Unlock()
}

func (l *fakeLink) EnqueueRequest(kind controllink.Kind, payload []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.full[kind] {
		return false
	}
	l.sent = append(l.sent, controllink.Request{Kind: kind, Payload: append([]byte(nil), payload...)})
	return true
}

func (l *fakeLink) ProcessMessages(h controllink.Handler) int {
	l.mu.Lock()
	msgs := l.inbox
	l.inbox = nil
	l.mu.Unlock()
	for _, m := range msgs {
		h.OnMessage(m.Kind, m.Payload)
	}
	return len(msgs)
}

func (l *fakeLink) Ready() <-chan struct{} { return l.ready }

func (l *fakeLink) takeSent() []controllink.Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.sent
	l.sent = nil
	return out
}

type fakeRadio struct {
	mu         sync.Mutex
	initErr    error
	connectErr error
	up         bool
	inits      int
	connects   int
	deinits    int
	lastSSID   string
	lastPass   string
}

func (r *fakeRadio) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	return r.initErr
}

func (r *fakeRadio) Connect(ctx context.Context, ssid, password string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connects++
	r.lastSSID, r.lastPass = ssid, password
	if r.connectErr != nil {
		return "", r.connectErr
	}
	if ssid == "" || password == "" {
		return "", errors.New("missing credentials")
	}
	r.up = true
	return "10.0.0.7", nil
}

func (r *fakeRadio) LinkUp() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.up
}

func (r *fakeRadio) Deinit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deinits++
	r.up = false
	return nil
}

func (r *fakeRadio) setUp(up bool) {
	r.mu.Lock()
	r.up = up
	r.mu.Unlock()
}

type fakeStarter struct{ starts int }

func (s *fakeStarter) Start() error { s.starts++; return nil }

type fakeRebooter struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *fakeRebooter) Reboot(d time.Duration) {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
}

type harness struct {
	o        *Orchestrator
	link     *fakeLink
	radio    *fakeRadio
	server   *fakeStarter
	rebooter *fakeRebooter
	pub      *MemoryPublisher
}

func newHarness(mut func(*Config)) *harness {
	h := &harness{
		link:     newFakeLink(),
		radio:    &fakeRadio{},
		server:   &fakeStarter{},
		rebooter: &fakeRebooter{},
		pub:      NewMemoryPublisher(),
	}
	cfg := Config{
		ClientAPIVersion: "2.0",
		Link:             h.link,
		Radio:            h.radio,
		Server:           h.server,
		Rebooter:         h.rebooter,
		PollInterval:     5 * time.Millisecond,
		Logger:           zerolog.Nop(),
	}
	if mut != nil {
		mut(&cfg)
	}
	h.o = New(cfg)
	h.o.SetEventPublisher(h.pub)
	return h
}

func kinds(reqs []controllink.Request) []controllink.Kind {
	out := make([]controllink.Kind, len(reqs))
	for i, r := range reqs {
		out[i] = r.Kind
	}
	return out
}
