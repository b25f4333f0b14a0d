// Package wire provides dependency injection for watchful.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/example/watchful/internal/adapters/backend"
	"github.com/example/watchful/internal/adapters/blobstore"
	cliadapter "github.com/example/watchful/internal/adapters/cli"
	"github.com/example/watchful/internal/adapters/connectivity"
	"github.com/example/watchful/internal/adapters/sensor"
	"github.com/example/watchful/internal/adapters/sqlite"
	"github.com/example/watchful/internal/adapters/statusapi"
	"github.com/example/watchful/internal/app"
	"github.com/example/watchful/internal/clock"
	"github.com/example/watchful/internal/config"
	"github.com/example/watchful/internal/db"
	"github.com/example/watchful/internal/logging"
	"github.com/example/watchful/internal/ports/primary"
	"github.com/example/watchful/internal/ports/secondary"
)

var (
	configPath string

	cfg             *config.Config
	logger          *slog.Logger
	database        *sql.DB
	actor           *primary.Actor
	gateService     primary.GateService
	evidenceService primary.EvidenceService
	retryWorker     primary.RetryWorker
	probeMonitor    *connectivity.ProbeMonitor
	statusServer    *statusapi.Server
	once            sync.Once
)

// SetConfigPath selects the config file. It only has an effect before the
// first service is requested.
func SetConfigPath(path string) {
	configPath = path
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// Actor returns the configured session, or nil when there is none.
func Actor() *primary.Actor {
	once.Do(initServices)
	return actor
}

// GateService returns the singleton GateService instance.
func GateService() primary.GateService {
	once.Do(initServices)
	return gateService
}

// EvidenceService returns the singleton EvidenceService instance.
func EvidenceService() primary.EvidenceService {
	once.Do(initServices)
	return evidenceService
}

// RetryWorker returns the singleton RetryWorker instance.
func RetryWorker() primary.RetryWorker {
	once.Do(initServices)
	return retryWorker
}

// ProbeMonitor returns the connectivity prober, or nil when connectivity
// is static.
func ProbeMonitor() *connectivity.ProbeMonitor {
	once.Do(initServices)
	return probeMonitor
}

// StatusServer returns the status API server.
func StatusServer() *statusapi.Server {
	once.Do(initServices)
	return statusServer
}

// Close releases the database. Safe to call when nothing was initialized.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error

	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}

	database, err = db.Open(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	evidenceRepo := sqlite.NewEvidenceRepository(database)
	preferenceRepo := sqlite.NewPreferenceRepository(database)

	remote, evidenceBackend := newBackend()

	blobs, err := blobstore.NewDirStore(cfg.BlobRoot())
	if err != nil {
		log.Fatalf("failed to initialize blob store: %v", err)
	}

	pipeline := sensor.NewExecPipeline(sensor.Config{
		Command: cfg.Sensor.Command,
		Args:    cfg.Sensor.Args,
		Logger:  logger,
	})

	// Create services (primary ports implementation)
	actor = app.ResolveActor(cfg.Session.Roles)
	gateService = app.NewGateService(preferenceRepo, remote, pipeline, logger)
	evidenceService = app.NewEvidenceService(evidenceRepo, clock.Real())
	retryWorker = app.NewRetryWorker(evidenceRepo, blobs, evidenceBackend, newConnectivityMonitor(), app.RetryWorkerOptions{
		Allowed:   cfg.UploadPolicy(),
		ItemDelay: cfg.ItemDelay(),
		Logger:    logger,
	})

	statusServer = statusapi.NewServer(statusapi.Services{
		Gate:     gateService,
		Worker:   retryWorker,
		Evidence: evidenceService,
	}, actor, logger)
}

// newBackend returns the REST client, or the offline stand-in when no
// backend is configured.
func newBackend() (secondary.RemoteSettingsReader, secondary.EvidenceBackend) {
	if cfg.Backend.BaseURL == "" {
		logger.Info("no backend configured, running offline")
		return backend.Offline{}, backend.Offline{}
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Session.Token,
		Timeout: cfg.BackendTimeout(),
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to initialize backend client: %v", err)
	}
	return client, client
}

// newConnectivityMonitor probes when a probe URL is configured and
// otherwise reports the configured network kind permanently.
func newConnectivityMonitor() secondary.ConnectivityMonitor {
	kind := secondary.ConnectivityKind(strings.ToLower(cfg.Connectivity.Kind))
	if cfg.Connectivity.ProbeURL == "" {
		return connectivity.NewStatic(kind)
	}

	probeMonitor = connectivity.NewProbeMonitor(connectivity.ProbeConfig{
		URL:        cfg.Connectivity.ProbeURL,
		Interval:   cfg.ProbeInterval(),
		OnlineKind: kind,
		Logger:     logger,
	})
	return probeMonitor
}

// EvidenceAdapter returns a new EvidenceAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func EvidenceAdapter() *cliadapter.EvidenceAdapter {
	return EvidenceAdapterWithOutput(os.Stdout)
}

// EvidenceAdapterWithOutput returns a new EvidenceAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func EvidenceAdapterWithOutput(out io.Writer) *cliadapter.EvidenceAdapter {
	once.Do(initServices)
	return cliadapter.NewEvidenceAdapter(evidenceService, out)
}

// GateAdapter returns a new GateAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func GateAdapter() *cliadapter.GateAdapter {
	return GateAdapterWithOutput(os.Stdout)
}

// GateAdapterWithOutput returns a new GateAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func GateAdapterWithOutput(out io.Writer) *cliadapter.GateAdapter {
	once.Do(initServices)
	return cliadapter.NewGateAdapter(gateService, retryWorker, out)
}
