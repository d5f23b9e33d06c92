package radio

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeIfaces struct {
	mu    sync.Mutex
	ifs   []net.Interface
	addrs map[string][]net.Addr
}

func (f *fakeIfaces) Interfaces() ([]net.Interface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]net.Interface(nil), f.ifs...), nil
}

func (f *fakeIfaces) Addrs(ifi net.Interface) ([]net.Addr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addrs[ifi.Name], nil
}

func (f *fakeIfaces) set(name string, up bool, ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	flags := net.Flags(0)
	if up {
		flags |= net.FlagUp
	}
	found := false
	for i := range f.ifs {
		if f.ifs[i].Name == name {
			f.ifs[i].Flags = flags
			found = true
		}
	}
	if !found {
		f.ifs = append(f.ifs, net.Interface{Index: len(f.ifs) + 1, Name: name, Flags: flags})
	}
	if f.addrs == nil {
		f.addrs = map[string][]net.Addr{}
	}
	if ip == "" {
		delete(f.addrs, name)
		return
	}
	f.addrs[name] = []net.Addr{&net.IPNet{IP: net.ParseIP(ip), Mask: net.CIDRMask(24, 32)}}
}

func newStation(src *fakeIfaces, name string) *Station {
	return NewStation(Options{Interface: name, PollInterval: 2 * time.Millisecond, Source: src, Logger: zerolog.Nop()})
}

func TestStationInitMissingInterface(t *testing.T) {
	src := &fakeIfaces{}
	src.set("eth0", true, "192.168.1.5")
	if err := newStation(src, "wlan9").Init(); !errors.Is(err, ErrNoInterface) {
		t.Fatalf("err=%v", err)
	}
}

func TestStationAutoSelectSkipsLoopback(t *testing.T) {
	src := &fakeIfaces{ifs: []net.Interface{{Index: 1, Name: "lo", Flags: net.FlagUp | net.FlagLoopback}}}
	src.addrs = map[string][]net.Addr{"lo": {&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)}}}
	src.set("wlan0", true, "10.1.2.3")
	st := newStation(src, "")
	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ip, err := st.Connect(context.Background(), "office", "pw")
	if err != nil || ip != "10.1.2.3" {
		t.Fatalf("Connect=%q,%v", ip, err)
	}
}

func TestStationConnectWaitsForAddress(t *testing.T) {
	src := &fakeIfaces{}
	src.set("wlan0", false, "")
	st := newStation(src, "wlan0")
	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		src.set("wlan0", true, "10.0.0.9")
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ip, err := st.Connect(ctx, "office", "pw")
	if err != nil || ip != "10.0.0.9" {
		t.Fatalf("Connect=%q,%v", ip, err)
	}
	if !st.LinkUp() {
		t.Fatalf("link should be up")
	}
	src.set("wlan0", false, "10.0.0.9")
	if st.LinkUp() {
		t.Fatalf("link should be down")
	}
}

func TestStationConnectTimeout(t *testing.T) {
	src := &fakeIfaces{}
	src.set("wlan0", true, "")
	st := newStation(src, "wlan0")
	_ = st.Init()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := st.Connect(ctx, "office", "pw"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
}

func TestStationDeinit(t *testing.T) {
	src := &fakeIfaces{}
	src.set("wlan0", true, "10.0.0.9")
	st := newStation(src, "wlan0")
	_ = st.Init()
	_ = st.Deinit()
	if st.LinkUp() {
		t.Fatalf("deinitialized station reports link up")
	}
	if _, err := st.Connect(context.Background(), "office", "pw"); err == nil {
		t.Fatalf("connect after deinit must fail")
	}
}

func TestStationAutoSelectWithoutAddress(t *testing.T) {
	src := &fakeIfaces{}
	src.set("eth0", false, "")
	src.set("wlan0", true, "")
	st := newStation(src, "")
	if err := st.Init(); err != nil {
		t.Fatalf("Init on a cold interface: %v", err)
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		src.set("wlan0", true, "10.0.0.7")
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if ip, err := st.Connect(ctx, "office", "pw"); err != nil || ip != "10.0.0.7" {
		t.Fatalf("Connect=%q,%v", ip, err)
	}
}

func TestStationReinitKeepsInterfaceAfterAddressLoss(t *testing.T) {
	src := &fakeIfaces{}
	src.set("eth0", true, "")
	src.set("wlan0", true, "10.0.0.9")
	st := newStation(src, "")
	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	src.set("wlan0", false, "")
	if st.LinkUp() {
		t.Fatalf("link should be down")
	}
	_ = st.Deinit()
	if err := st.Init(); err != nil {
		t.Fatalf("re-Init after link loss: %v", err)
	}
	src.set("wlan0", true, "10.0.0.10")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if ip, err := st.Connect(ctx, "office", "pw"); err != nil || ip != "10.0.0.10" {
		t.Fatalf("Connect=%q,%v (re-init moved to another interface?)", ip, err)
	}
}

func TestStationNoCandidates(t *testing.T) {
	src := &fakeIfaces{ifs: []net.Interface{{Index: 1, Name: "lo", Flags: net.FlagUp | net.FlagLoopback}}}
	if err := newStation(src, "").Init(); !errors.Is(err, ErrNoInterface) {
		t.Fatalf("err=%v", err)
	}
}
