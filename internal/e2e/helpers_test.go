package e2e

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zulubridge/internal/bridge"
	"zulubridge/internal/cache"
	"zulubridge/internal/controllink"
	"zulubridge/internal/httpapi"
	"zulubridge/internal/resolver"
)

// fakeDevice answers control-link requests the way the emulator firmware does.
type fakeDevice struct {
	conn net.Conn

	mu     sync.Mutex
	seen   []controllink.Request
	images [][]byte
	names  []string
}

func (d *fakeDevice) send(kind controllink.Kind, payload []byte) {
	frame, err := controllink.EncodeFrame(kind, payload)
	if err != nil {
		return
	}
	_, _ = d.conn.Write(frame)
}

func (d *fakeDevice) requests() []controllink.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]controllink.Request(nil), d.seen...)
}

func (d *fakeDevice) serve() {
	dec := controllink.NewDecoder()
	buf := make([]byte, 256)
	next := 0
	for {
		n, err := d.conn.Read(buf)
		if err != nil {
			return
		}
		for _, m := range dec.Decode(buf[:n], nil) {
			d.mu.Lock()
			d.seen = append(d.seen, controllink.Request{Kind: m.Kind, Payload: append([]byte(nil), m.Payload...)})
			d.mu.Unlock()
			switch m.Kind {
			case controllink.KindAnnounceVersion:
				d.send(controllink.KindAPIVersion, []byte("2.1"))
			case controllink.KindFetchSSID:
				d.send(controllink.KindSSID, []byte("lab"))
			case controllink.KindFetchPassword:
				d.send(controllink.KindPassword, []byte("hunter2"))
			case controllink.KindSubscribeStatus:
				d.send(controllink.KindStatus, []byte(`{"isPrimary":true}`))
			case controllink.KindFetchFilenames:
				d.send(controllink.KindFilenamesBegin, nil)
				for _, n := range d.names {
					d.send(controllink.KindFilename, []byte(n))
				}
				d.send(controllink.KindFilename, nil)
			case controllink.KindFetchImages:
				for _, img := range d.images {
					d.send(controllink.KindImage, img)
				}
				d.send(controllink.KindImage, nil)
			case controllink.KindFetchNextImage:
				if next < len(d.images) {
					d.send(controllink.KindImage, d.images[next])
					next++
				} else {
					d.send(controllink.KindImage, nil)
					next = 0
				}
			}
		}
	}
}

type fakeRadio struct{}

func (fakeRadio) Init() error { return nil }
func (fakeRadio) Connect(ctx context.Context, ssid, password string) (string, error) {
	return "192.0.2.10", nil
}
func (fakeRadio) LinkUp() bool  { return true }
func (fakeRadio) Deinit() error { return nil }

type nopRebooter struct{}

func (nopRebooter) Reboot(time.Duration) {}

type service struct {
	*resolver.Resolver
	orch *bridge.Orchestrator
}

func (s *service) Ready() bool { return s.orch.Serving() }

type stack struct {
	orch    *bridge.Orchestrator
	starter *httpapi.Starter
	device  *fakeDevice
	alloc   *cache.Allocator
}

// newStack wires the bridge end to end over an in-memory link and starts it.
func newStack(t *testing.T, names []string, images [][]byte) *stack {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	local, peer := net.Pipe()
	dev := &fakeDevice{conn: peer, names: names, images: images}
	go dev.serve()

	client := controllink.NewClient(local, controllink.Options{Logger: zerolog.Nop()})
	client.Start(ctx)

	alloc := cache.NewAllocator()
	filenames := cache.NewFilenames(0, zerolog.Nop())
	imgs := cache.NewImages(alloc, zerolog.Nop())
	status := cache.NewStatusSnapshot(0)

	svc := &service{}
	starter := httpapi.NewStarter("127.0.0.1:0", httpapi.NewMux(svc))
	orch := bridge.New(bridge.Config{
		Link:      client,
		Radio:     fakeRadio{},
		Server:    starter,
		Rebooter:  nopRebooter{},
		Filenames: filenames,
		Images:    imgs,
		Status:    status,
		Logger:    zerolog.Nop(),
	})
	svc.Resolver = resolver.New(resolver.Config{
		Requester: client,
		Filenames: filenames,
		Images:    imgs,
		Status:    status,
		Version:   orch.Version(),
		Logger:    zerolog.Nop(),
	})
	svc.orch = orch

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = orch.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer scancel()
		_ = starter.Shutdown(sctx)
		_ = client.Close()
		_ = peer.Close()
	})

	waitFor(t, "serving", orch.Serving)
	return &stack{orch: orch, starter: starter, device: dev, alloc: alloc}
}

func (s *stack) url(path string) string { return "http://" + s.starter.Addr() + path }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// pollUntil repeats GET url until the body is no longer the wait alias.
func pollUntil(t *testing.T, url string) string {
	t.Helper()
	var body []byte
	waitFor(t, url, func() bool {
		_, body = httpGet(t, url)
		return string(body) != `{"status":"wait"}`
	})
	return string(body)
}
