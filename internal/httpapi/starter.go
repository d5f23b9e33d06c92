package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
)

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// ErrAlreadyStarted is returned by Start after the first call.
var ErrAlreadyStarted = errors.New("httpapi: server already started")

// Starter binds the listener and serves the handler at most once. The
// orchestrator calls Start on the first successful radio connect; later
// reconnects reuse the running server.
type Starter struct {
	addr    string
	handler http.Handler

	once    sync.Once
	mu      sync.Mutex
	srv     *http.Server
	ln      net.Listener
	serveCh chan error
}

// NewStarter returns a Starter for addr (host:port, ":0" picks a free port).
func NewStarter(addr string, h http.Handler) *Starter {
	return &Starter{addr: addr, handler: h, serveCh: make(chan error, 1)}
}

// Start listens and begins serving in the background.
func (s *Starter) Start() error {
	err := ErrAlreadyStarted
	s.once.Do(func() {
		var ln net.Listener
		ln, err = net.Listen("tcp", s.addr)
		if err != nil {
			return
		}
		srv := &http.Server{
			Handler:           s.handler,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			BaseContext:       func(net.Listener) context.Context { return serverBaseCtx },
		}
		s.mu.Lock()
		s.srv, s.ln = srv, ln
		s.mu.Unlock()
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				if zlog != nil {
					zlog.Error().Err(err).Msg("http server stopped")
				}
				s.serveCh <- err
			}
			close(s.serveCh)
		}()
		if zlog != nil {
			zlog.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		}
	})
	return err
}

// Started reports whether the listener is bound.
func (s *Starter) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln != nil
}

// Addr returns the bound address, or "" before Start.
func (s *Starter) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Err is closed when Serve returns and yields its error, if any.
func (s *Starter) Err() <-chan error { return s.serveCh }

// Shutdown gracefully stops a started server. It is a no-op otherwise.
func (s *Starter) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
