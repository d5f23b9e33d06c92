package httpapi

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("ZULUBRIDGE_HTTP_LOG_LEVEL"))

// SetDefaultLogLevel overrides the per-request default (off, error, info, debug).
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logResource records one served resource at the request's level.
func logResource(r *http.Request, lvl LogLevel, name string, status int, start time.Time) {
	if lvl == LevelOff {
		return
	}
	if lvl == LevelInfo && status != http.StatusOK {
		lvl = LevelError
	}
	dur := time.Since(start)
	if zlog != nil {
		var ev *zerolog.Event
		switch lvl {
		case LevelError:
			ev = zlog.Error()
		case LevelDebug:
			ev = zlog.Debug().Str("query", r.URL.RawQuery).Str("remote", r.RemoteAddr)
		default:
			ev = zlog.Info()
		}
		ev.Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Str("resource", name).
			Int("status", status).
			Dur("duration", dur).
			Msg("http resource")
		return
	}
	log.Printf("http %s -> %q status=%d dur=%s", r.URL.Path, name, status, dur)
}
