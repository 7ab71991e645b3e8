package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/blinky-companion/sync-agent/internal/config"
	"github.com/blinky-companion/sync-agent/internal/handlers"
	"github.com/blinky-companion/sync-agent/internal/metrics"
	"github.com/blinky-companion/sync-agent/internal/server"
	"github.com/blinky-companion/sync-agent/internal/server/middlewares"
	"github.com/blinky-companion/sync-agent/internal/services"
	"github.com/blinky-companion/sync-agent/internal/store"
	"github.com/blinky-companion/sync-agent/internal/store/migrations"
	"github.com/blinky-companion/sync-agent/pkg/candidates"
	"github.com/blinky-companion/sync-agent/pkg/credentials"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
	"github.com/blinky-companion/sync-agent/pkg/payload"
	"github.com/blinky-companion/sync-agent/pkg/scheduler"
	"github.com/blinky-companion/sync-agent/pkg/transport"
	"github.com/blinky-companion/sync-agent/pkg/transport/ble"
	"github.com/blinky-companion/sync-agent/pkg/transport/loopback"
)

const (
	transportBLE      = "ble"
	transportLoopback = "loopback"
)

func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sync agent",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			viper.AutomaticEnv()
			viper.SetEnvPrefix(envPrefix)
			viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			cobraflags.PresetRequiredFlags(envPrefix, make(map[*pflag.Flag]bool), cmd)

			return validateConfiguration(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	registerFlags(cmd, cfg)

	return cmd
}

func registerFlags(cmd *cobra.Command, cfg *config.Configuration) {
	flags := cmd.Flags()

	flags.StringVar(&cfg.Server.Address, "server-address", cfg.Server.Address, "Address the HTTP API binds to")
	flags.IntVar(&cfg.Server.HTTPPort, "server-http-port", cfg.Server.HTTPPort, "Port of the HTTP API")
	flags.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode: dev or prod (prod serves TLS)")

	flags.StringVar(&cfg.Agent.DataFolder, "data-folder", cfg.Agent.DataFolder, "Folder holding the credential file, master key and session database")
	flags.IntVar(&cfg.Agent.NumWorkers, "num-workers", cfg.Agent.NumWorkers, "Number of transport workers")
	flags.StringVar(&cfg.Agent.Timezone, "timezone", cfg.Agent.Timezone, "IANA timezone used for the device clock")
	flags.BoolVar(&cfg.Agent.MetricsEnabled, "metrics-enabled", cfg.Agent.MetricsEnabled, "Expose prometheus metrics on /metrics")
	flags.StringVar(&cfg.Agent.Version, "version", cfg.Agent.Version, "Agent version reported by the version command")

	flags.StringVar(&cfg.Device.Transport, "transport", cfg.Device.Transport, "Device transport: ble or loopback")
	flags.StringVar(&cfg.Device.ID, "device-id", cfg.Device.ID, "Device to connect to on start (MAC address for ble)")
	flags.StringVar(&cfg.Device.ServiceUUID, "ble-service-uuid", cfg.Device.ServiceUUID, "GATT service exposed by the device")
	flags.StringVar(&cfg.Device.CharacteristicUUID, "ble-characteristic-uuid", cfg.Device.CharacteristicUUID, "GATT characteristic payloads are written to")
	flags.IntVar(&cfg.Device.ChunkSize, "ble-chunk-size", cfg.Device.ChunkSize, "Maximum bytes per BLE write")

	flags.StringVar(&cfg.Credentials.File, "credentials-file", cfg.Credentials.File, "Encrypted credential file (default <data-folder>/credentials.enc)")
	flags.StringVar(&cfg.Credentials.KeyFile, "credentials-key-file", cfg.Credentials.KeyFile, "Master key file (default <data-folder>/master.key)")
	flags.StringVar(&cfg.Credentials.Passphrase, "credentials-passphrase", cfg.Credentials.Passphrase, "Passphrase wrapping the master key")

	flags.BoolVar(&cfg.Auth.Enabled, "authentication-enabled", cfg.Auth.Enabled, "Require a bearer token on the API")
	flags.StringVar(&cfg.Auth.JWTFilePath, "authentication-jwt-filepath", cfg.Auth.JWTFilePath, "File holding the HS256 secret")

	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
}

func validateConfiguration(cfg *config.Configuration) error {
	switch cfg.Server.ServerMode {
	case server.DevServer, server.ProductionServer:
	default:
		return fmt.Errorf("invalid server mode %q: must be %q or %q", cfg.Server.ServerMode, server.DevServer, server.ProductionServer)
	}

	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http-port %d: must be between 1 and 65535", cfg.Server.HTTPPort)
	}

	if net.ParseIP(cfg.Server.Address) == nil && cfg.Server.Address != "localhost" {
		return fmt.Errorf("invalid server-address %q", cfg.Server.Address)
	}

	if cfg.Agent.NumWorkers < 1 {
		return fmt.Errorf("invalid num-workers %d: must be at least 1", cfg.Agent.NumWorkers)
	}

	if cfg.Agent.DataFolder == "" {
		return errors.New("data-folder cannot be empty")
	}

	if _, err := time.LoadLocation(cfg.Agent.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Agent.Timezone, err)
	}

	switch cfg.Device.Transport {
	case transportBLE:
		if cfg.Device.ID != "" {
			if _, err := net.ParseMAC(cfg.Device.ID); err != nil {
				return fmt.Errorf("device-id must be a MAC address for the ble transport: %w", err)
			}
		}
		if cfg.Device.ChunkSize < 1 {
			return fmt.Errorf("invalid ble-chunk-size %d: must be at least 1", cfg.Device.ChunkSize)
		}
	case transportLoopback:
	default:
		return fmt.Errorf("invalid transport %q: must be %q or %q", cfg.Device.Transport, transportBLE, transportLoopback)
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTFilePath == "" {
		return errors.New("authentication-jwt-filepath must be set when authentication is enabled")
	}

	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log-format %q: must be console or json", cfg.LogFormat)
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log-level %q: %w", cfg.LogLevel, err)
	}

	return nil
}

func newLogger(cfg *config.Configuration) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

func run(ctx context.Context, cfg *config.Configuration) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintln(os.Stderr, banner(cfg))

	loc, err := time.LoadLocation(cfg.Agent.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone: %w", err)
	}

	creds := openCredentials(cfg)

	db, err := store.NewDB(cfg.DatabaseFile())
	if err != nil {
		return err
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrating session database: %w", err)
	}
	st := store.NewStore(db)
	defer func() { _ = st.Close() }()

	t, err := newTransport(cfg)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(cfg.Agent.NumWorkers)
	defer sched.Close()

	coordinator := services.NewConnectionCoordinator(sched, t)
	coordinator.Subscribe(services.RememberDevice(st.Device(), time.Now))

	networkSrv := services.NewNetworkService(candidates.NewCycler(), creds)
	syncSrv := services.NewSyncService(coordinator, networkSrv, payload.NewBuilder(loc), st.Sync())

	var opts []server.Option
	if cfg.Agent.MetricsEnabled {
		recorder := metrics.NewRecorder()
		coordinator.Subscribe(recorder.OnNotification)
		syncSrv.WithObserver(recorder)
		opts = append(opts, server.WithMetrics(recorder.Handler()))
	}
	if cfg.Auth.Enabled {
		secret, err := middlewares.LoadSecret(cfg.Auth.JWTFilePath)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithAuth(secret))
	}

	go coordinator.Run(ctx)

	if deviceID := startupDevice(ctx, cfg, st); deviceID != "" {
		if err := coordinator.Connect(deviceID); err != nil {
			zap.S().Named("run").Warnw("failed to request connection", "device", deviceID, "error", err)
		}
	}

	h := handlers.New(coordinator, networkSrv, syncSrv)
	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		h.Register(router)
	}, opts...)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Named("run").Infow("starting server", "address", cfg.Server.Address, "port", cfg.Server.HTTPPort, "mode", cfg.Server.ServerMode)
		if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		zap.S().Named("run").Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Stop(shutdownCtx)

	if err := t.Disconnect(shutdownCtx); err != nil && !errors.Is(err, transport.ErrNotConnected) {
		zap.S().Named("run").Debugw("disconnect on shutdown", "error", err)
	}

	return nil
}

// openCredentials falls back to a degraded in-memory store when the master
// key cannot be obtained, so the agent keeps serving syncs.
func openCredentials(cfg *config.Configuration) *credentials.Store {
	var keys credentials.KeyProvider = credentials.NewFileKeyProvider(cfg.KeyFile())
	if cfg.Credentials.Passphrase != "" {
		keys = credentials.NewPassphraseKeyProvider(cfg.KeyFile(), cfg.Credentials.Passphrase)
	}

	creds, err := credentials.Open(cfg.CredentialsFile(), keys)
	if err != nil {
		if !srvErrors.IsCryptoInitError(err) {
			zap.S().Named("run").Errorw("unexpected credential store error", "error", err)
		}
		zap.S().Named("run").Warnw("credentials will not be persisted", "error", err)
		return credentials.NewDegraded()
	}

	zap.S().Named("run").Infow("credential store opened", "path", creds.Path(), "networks", creds.Len())
	return creds
}

func newTransport(cfg *config.Configuration) (transport.Transport, error) {
	switch cfg.Device.Transport {
	case transportLoopback:
		return loopback.New(), nil
	default:
		t, err := ble.New(ble.Config{
			ServiceUUID:        cfg.Device.ServiceUUID,
			CharacteristicUUID: cfg.Device.CharacteristicUUID,
			ChunkSize:          cfg.Device.ChunkSize,
		})
		if err != nil {
			return nil, fmt.Errorf("creating ble transport: %w", err)
		}
		return t, nil
	}
}

// startupDevice prefers the configured device and falls back to the last
// device the agent was ready with.
func startupDevice(ctx context.Context, cfg *config.Configuration, st *store.Store) string {
	if cfg.Device.ID != "" {
		return cfg.Device.ID
	}

	last, err := st.Device().Last(ctx)
	if err != nil {
		if !srvErrors.IsResourceNotFoundError(err) {
			zap.S().Named("run").Warnw("failed to read last device", "error", err)
		}
		return ""
	}
	return last.ID
}
