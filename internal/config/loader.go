package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"zulubridge/internal/common/fsutil"
)

// Config holds runtime parameters for the bridge.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr             string `json:"addr" yaml:"addr" toml:"addr"`
	ClientAPIVersion string `json:"client_api_version" yaml:"client_api_version" toml:"client_api_version"`

	Link  Link  `json:"link" yaml:"link" toml:"link"`
	WiFi  WiFi  `json:"wifi" yaml:"wifi" toml:"wifi"`
	Cache Cache `json:"cache" yaml:"cache" toml:"cache"`
	CORS  CORS  `json:"cors" yaml:"cors" toml:"cors"`
	Log   Log   `json:"log" yaml:"log" toml:"log"`

	ResetDelayMS   int `json:"reset_delay_ms" yaml:"reset_delay_ms" toml:"reset_delay_ms"`
	PollIntervalMS int `json:"poll_interval_ms" yaml:"poll_interval_ms" toml:"poll_interval_ms"`
}

// Link describes the control-link transport. URL selects the WebSocket
// relay; otherwise Port is opened as a serial device.
type Link struct {
	Port     string `json:"port" yaml:"port" toml:"port"`
	Baud     int    `json:"baud" yaml:"baud" toml:"baud"`
	URL      string `json:"url" yaml:"url" toml:"url"`
	Username string `json:"username" yaml:"username" toml:"username"`
	Insecure bool   `json:"insecure" yaml:"insecure" toml:"insecure"`
	RxDepth  int    `json:"rx_depth" yaml:"rx_depth" toml:"rx_depth"`
	TxDepth  int    `json:"tx_depth" yaml:"tx_depth" toml:"tx_depth"`
}

// WiFi holds the fallback credentials and the interface to serve on.
type WiFi struct {
	SSID             string `json:"ssid" yaml:"ssid" toml:"ssid"`
	Password         string `json:"password" yaml:"password" toml:"password"`
	Interface        string `json:"interface" yaml:"interface" toml:"interface"`
	ConnectTimeoutMS int    `json:"connect_timeout_ms" yaml:"connect_timeout_ms" toml:"connect_timeout_ms"`
}

// Cache bounds the document caches in bytes.
type Cache struct {
	FilenameBytes int `json:"filename_bytes" yaml:"filename_bytes" toml:"filename_bytes"`
	StatusBytes   int `json:"status_bytes" yaml:"status_bytes" toml:"status_bytes"`
}

type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

type Log struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
	// HTTP is the default per-request level: off, error, info or debug.
	HTTP string `json:"http" yaml:"http" toml:"http"`
}

// Defaults returns the configuration used when nothing is specified.
func Defaults() Config {
	return Config{
		Addr:             ":80",
		ClientAPIVersion: "2.0",
		Link:             Link{Baud: 115200, RxDepth: 32, TxDepth: 16},
		WiFi:             WiFi{ConnectTimeoutMS: 30000},
		Cache:            Cache{FilenameBytes: 16 * 1024, StatusBytes: 4096},
		CORS:             CORS{Methods: []string{"GET", "OPTIONS"}, Headers: []string{"Content-Type"}},
		Log:              Log{Level: "info", Format: "console", HTTP: "off"},
		ResetDelayMS:     10,
		PollIntervalMS:   50,
	}
}

// WithDefaults returns c with every zero field replaced by its default.
func (c Config) WithDefaults() Config {
	d := Defaults()
	setString(&c.Addr, d.Addr)
	setString(&c.ClientAPIVersion, d.ClientAPIVersion)
	setInt(&c.Link.Baud, d.Link.Baud)
	setInt(&c.Link.RxDepth, d.Link.RxDepth)
	setInt(&c.Link.TxDepth, d.Link.TxDepth)
	setInt(&c.WiFi.ConnectTimeoutMS, d.WiFi.ConnectTimeoutMS)
	setInt(&c.Cache.FilenameBytes, d.Cache.FilenameBytes)
	setInt(&c.Cache.StatusBytes, d.Cache.StatusBytes)
	if len(c.CORS.Methods) == 0 {
		c.CORS.Methods = d.CORS.Methods
	}
	if len(c.CORS.Headers) == 0 {
		c.CORS.Headers = d.CORS.Headers
	}
	setString(&c.Log.Level, d.Log.Level)
	setString(&c.Log.Format, d.Log.Format)
	setString(&c.Log.HTTP, d.Log.HTTP)
	setInt(&c.ResetDelayMS, d.ResetDelayMS)
	setInt(&c.PollIntervalMS, d.PollIntervalMS)
	return c
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst <= 0 {
		*dst = def
	}
}

// ConnectTimeout returns the radio connect timeout.
func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.WiFi.ConnectTimeoutMS) * time.Millisecond
}

// ResetDelay returns the delay between a reset command and the restart.
func (c Config) ResetDelay() time.Duration { return time.Duration(c.ResetDelayMS) * time.Millisecond }

// PollInterval returns the orchestrator's idle step interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
