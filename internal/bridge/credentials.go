package bridge

import "github.com/rs/zerolog"

// credential resolves one value: the peer's value if supplied, else the
// configured fallback, else empty. It is only touched by the serving
// goroutine (callbacks run inside ProcessMessages).
type credential struct {
	name     string
	fallback string
	value    string
	source   string
	warned   bool
}

func (c *credential) resolve(peer string, log zerolog.Logger) {
	switch {
	case peer != "":
		c.value, c.source = peer, "peer"
	case c.fallback != "":
		c.value, c.source = c.fallback, "config"
	default:
		c.value, c.source = "", ""
	}
	if c.value != "" {
		log.Info().Str("credential", c.name).Str("source", c.source).Msg("credential resolved")
		return
	}
	if !c.warned {
		c.warned = true
		stallsTotal.WithLabelValues(c.name).Inc()
		log.Warn().Str("credential", c.name).
			Msg("no value from the device and none configured; waiting for configuration")
	}
}

// Credentials holds the radio SSID and password.
type Credentials struct {
	ssid     credential
	password credential
}

// NewCredentials returns credentials falling back to the given values.
func NewCredentials(ssid, password string) *Credentials {
	return &Credentials{
		ssid:     credential{name: "ssid", fallback: ssid},
		password: credential{name: "password", fallback: password},
	}
}

func (c *Credentials) SSID() string     { return c.ssid.value }
func (c *Credentials) Password() string { return c.password.value }

// Complete reports whether both values are resolved. Complete credentials
// are fixed for the rest of the session.
func (c *Credentials) Complete() bool { return c.ssid.value != "" && c.password.value != "" }
