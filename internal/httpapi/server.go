package httpapi

import (
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zulubridge/internal/resolver"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Resolve(path string, params map[string]string) string
	Open(name string) (*resolver.File, bool)
	Ready() bool
}

// resourcePaths are the GET paths served through the resolver.
var resourcePaths = []string{
	"/", "/index.html", "/control.js", "/style.css",
	"/version", "/version.json", "/status", "/status.json",
	"/filenames", "/images", "/image", "/eject", "/nextImage",
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(middleware.Compress(5))
	// Security headers; documents change on every poll so nothing is cached
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	})

	serve := serveResource(svc)
	for _, p := range resourcePaths {
		r.Get(p, serve)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("starting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// serveResource resolves the request path to a resource and streams it from
// its virtual file.
func serveResource(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)
		name := svc.Resolve(r.URL.Path, decodeQuery(r.URL.RawQuery))
		if name == "" {
			writeJSONError(w, http.StatusNotFound, "resource not found")
			logResource(r, lvl, name, http.StatusNotFound, start)
			return
		}
		f, ok := svc.Open(name)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "resource not available: "+name)
			logResource(r, lvl, name, http.StatusNotFound, start)
			return
		}
		defer f.Close()
		if resolver.IsAlias(f.Name()) {
			aliasResponsesTotal.WithLabelValues(path.Base(f.Name())).Inc()
		}
		w.Header().Set("Content-Type", contentType(f.Name()))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, f); err != nil {
			logResource(r, LevelError, f.Name(), http.StatusOK, start)
			return
		}
		logResource(r, lvl, f.Name(), http.StatusOK, start)
	}
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
