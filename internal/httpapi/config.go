package httpapi

import "time"

// Server timeouts applied by Starter. Zero disables a timeout.
var (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// SetTimeouts configures the HTTP server timeouts; negative values are treated as zero.
func SetTimeouts(readHeader, write, idle time.Duration) {
	readHeaderTimeout = nonNegative(readHeader)
	writeTimeout = nonNegative(write)
	idleTimeout = nonNegative(idle)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
