package httpapi

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	// query param ?log=debug
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	// shorthand ?log=1
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("shorthand query override failed: %v", got)
	}
	// header X-Log-Level
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	SetDefaultLogLevel("info")
	defer SetDefaultLogLevel("")
	if got := requestLogLevel(httptest.NewRequest("GET", "/x", nil)); got != LevelInfo {
		t.Fatalf("default not applied: %v", got)
	}
}

func TestLogResource_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	orig := zlog
	defer func() { zlog = orig }()
	SetLogger(zerolog.New(&buf))

	r := httptest.NewRequest("GET", "/nextImage", nil)
	logResource(r, LevelInfo, "/wait.json", 200, time.Now())
	logResource(r, LevelOff, "/ignored.json", 200, time.Now())

	out := buf.String()
	if !strings.Contains(out, `"resource":"/wait.json"`) || !strings.Contains(out, `"level":"info"`) {
		t.Fatalf("unexpected log: %q", out)
	}
	if strings.Contains(out, "ignored") {
		t.Fatalf("off level still logged: %q", out)
	}
}
