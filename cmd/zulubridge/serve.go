package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"zulubridge/internal/bridge"
	"zulubridge/internal/cache"
	"zulubridge/internal/common/fsutil"
	"zulubridge/internal/config"
	"zulubridge/internal/controllink"
	"zulubridge/internal/device"
	"zulubridge/internal/httpapi"
	"zulubridge/internal/radio"
	"zulubridge/internal/resolver"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge",
	Long: `Run the bridge: open the control link, negotiate the API version, fetch
network credentials from the device, wait for the network interface and serve
the HTTP API.

Values come from the config file, then ZULUBRIDGE_* environment variables,
then flags.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "HTTP listen address, e.g. :80 (env ZULUBRIDGE_ADDR)")
	f.StringP("port", "p", "", "Serial port device (env ZULUBRIDGE_PORT)")
	f.IntP("baud", "b", 0, "Baud rate, serial only (env ZULUBRIDGE_BAUD)")
	f.StringP("url", "u", "", "WebSocket URL, ws:// or wss:// (env ZULUBRIDGE_URL)")
	f.String("username", "", "Username for HTTP Basic auth (env ZULUBRIDGE_USERNAME)")
	f.Bool("no-ssl-verify", false, "Skip TLS certificate verification, wss:// only")
	f.String("ssid", "", "Fallback network name (env ZULUBRIDGE_SSID)")
	f.String("interface", "", "Network interface to serve on; empty selects one (env ZULUBRIDGE_INTERFACE)")
	f.String("cors-origins", "", "Comma-separated CORS origins; enables CORS when set (env ZULUBRIDGE_CORS_ORIGINS)")
	f.String("http-log", "", "Per-request log level: off, error, info, debug (env ZULUBRIDGE_HTTP_LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd)
}

// resolveConfig layers the config file, the environment and changed flags,
// then fills defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", configPath, err)
		}
		cfg = loaded
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.Addr, _ = f.GetString("addr")
	}
	if f.Changed("port") {
		cfg.Link.Port, _ = f.GetString("port")
	}
	if f.Changed("baud") {
		cfg.Link.Baud, _ = f.GetInt("baud")
	}
	if f.Changed("url") {
		cfg.Link.URL, _ = f.GetString("url")
	}
	if f.Changed("username") {
		cfg.Link.Username, _ = f.GetString("username")
	}
	if f.Changed("no-ssl-verify") {
		cfg.Link.Insecure, _ = f.GetBool("no-ssl-verify")
	}
	if f.Changed("ssid") {
		cfg.WiFi.SSID, _ = f.GetString("ssid")
	}
	if f.Changed("interface") {
		cfg.WiFi.Interface, _ = f.GetString("interface")
	}
	if f.Changed("cors-origins") {
		v, _ := f.GetString("cors-origins")
		cfg.CORS.Origins = splitCSV(v)
		cfg.CORS.Enabled = len(cfg.CORS.Origins) > 0
	}
	if f.Changed("http-log") {
		cfg.Log.HTTP, _ = f.GetString("http-log")
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg.WithDefaults(), nil
}

// applyEnv overlays ZULUBRIDGE_* variables onto cfg.
func applyEnv(cfg *config.Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ZULUBRIDGE_ADDR", &cfg.Addr)
	str("ZULUBRIDGE_PORT", &cfg.Link.Port)
	str("ZULUBRIDGE_URL", &cfg.Link.URL)
	str("ZULUBRIDGE_USERNAME", &cfg.Link.Username)
	str("ZULUBRIDGE_SSID", &cfg.WiFi.SSID)
	str("ZULUBRIDGE_WIFI_PASSWORD", &cfg.WiFi.Password)
	str("ZULUBRIDGE_INTERFACE", &cfg.WiFi.Interface)
	str("ZULUBRIDGE_LOG_LEVEL", &cfg.Log.Level)
	str("ZULUBRIDGE_LOG_FORMAT", &cfg.Log.Format)
	str("ZULUBRIDGE_HTTP_LOG_LEVEL", &cfg.Log.HTTP)
	if v, ok := lookup("ZULUBRIDGE_BAUD"); ok && v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ZULUBRIDGE_BAUD: %w", err)
		}
		cfg.Link.Baud = baud
	}
	if v, ok := lookup("ZULUBRIDGE_CORS_ORIGINS"); ok && v != "" {
		cfg.CORS.Origins = splitCSV(v)
		cfg.CORS.Enabled = len(cfg.CORS.Origins) > 0
	}
	return nil
}

// checkSerialPort expands and verifies the serial device when no relay URL is set.
func checkSerialPort(cfg *config.Config) error {
	if cfg.Link.URL != "" || cfg.Link.Port == "" {
		return nil
	}
	port, err := fsutil.ExpandHome(cfg.Link.Port)
	if err != nil {
		return err
	}
	if !fsutil.PathExists(port) {
		return fmt.Errorf("serial port %s not found", port)
	}
	cfg.Link.Port = port
	return nil
}

// service joins the resolver with the orchestrator's readiness for the HTTP layer.
type service struct {
	*resolver.Resolver
	orch *bridge.Orchestrator
}

func (s *service) Ready() bool { return s.orch != nil && s.orch.Serving() }

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	component := func(name string) zerolog.Logger { return log.With().Str("component", name).Logger() }

	httpapi.SetLogger(component("http"))
	httpapi.SetDefaultLogLevel(cfg.Log.HTTP)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	if err := checkSerialPort(&cfg); err != nil {
		return err
	}
	conn, connInfo, err := controllink.Dial(ctx, cfg.Link.Port, cfg.Link.Baud, cfg.Link.URL, cfg.Link.Username, cfg.Link.Insecure)
	if err != nil {
		return fmt.Errorf("open control link: %w", err)
	}
	client := controllink.NewClient(conn, controllink.Options{
		RxDepth: cfg.Link.RxDepth,
		TxDepth: cfg.Link.TxDepth,
		Logger:  component("controllink"),
	})
	defer client.Close()
	client.Start(ctx)
	log.Info().Str("link", connInfo).Msg("control link open")

	cacheLog := component("cache")
	filenames := cache.NewFilenames(cfg.Cache.FilenameBytes, cacheLog)
	images := cache.NewImages(cache.NewAllocator(), cacheLog)
	status := cache.NewStatusSnapshot(cfg.Cache.StatusBytes)

	svc := &service{}
	starter := httpapi.NewStarter(cfg.Addr, httpapi.NewMux(svc))
	orch := bridge.New(bridge.Config{
		ClientAPIVersion: cfg.ClientAPIVersion,
		SSID:             cfg.WiFi.SSID,
		Password:         cfg.WiFi.Password,
		ConnectTimeout:   cfg.ConnectTimeout(),
		ResetDelay:       cfg.ResetDelay(),
		PollInterval:     cfg.PollInterval(),
		Link:             client,
		Radio:            radio.NewStation(radio.Options{Interface: cfg.WiFi.Interface, Logger: component("radio")}),
		Server:           starter,
		Rebooter:         device.NewRebooter(component("device")),
		Filenames:        filenames,
		Images:           images,
		Status:           status,
		Logger:           component("bridge"),
	})
	svc.Resolver = resolver.New(resolver.Config{
		Requester: client,
		Filenames: filenames,
		Images:    images,
		Status:    status,
		Version:   orch.Version(),
		Logger:    component("resolver"),
	})
	svc.orch = orch

	runErr := make(chan error, 1)
	go func() { runErr <- orch.Run(ctx) }()

	err = supervise(ctx, stop, runErr, client, starter.Err())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := starter.Shutdown(shutdownCtx); serr != nil {
		log.Warn().Err(serr).Msg("graceful shutdown error")
	}
	if err == nil || errors.Is(err, context.Canceled) {
		log.Info().Msg("bridge stopped")
		return nil
	}
	log.Error().Err(err).Msg("bridge stopped")
	return err
}

// linkWatch is the part of the control-link client supervise watches.
type linkWatch interface {
	Done() <-chan struct{}
	Err() error
}

// supervise waits until the orchestrator returns, the control link closes or
// the HTTP server fails. In the latter two cases it cancels the run and waits
// for the orchestrator before returning the cause.
func supervise(ctx context.Context, stop context.CancelFunc, runErr <-chan error, link linkWatch, serveErr <-chan error) error {
	var err error
	select {
	case err = <-runErr:
		return err
	case <-link.Done():
		if ctx.Err() == nil {
			err = link.Err()
			if err == nil {
				err = controllink.ErrConnectionClosed
			}
			err = fmt.Errorf("control link: %w", err)
		}
	case serr, ok := <-serveErr:
		err = errors.New("http server stopped")
		if ok && serr != nil {
			err = fmt.Errorf("http server: %w", serr)
		}
	}
	stop()
	<-runErr
	return err
}
