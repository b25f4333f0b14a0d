package connectivity

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/watchful/internal/clock"
	"github.com/example/watchful/internal/ports/secondary"
)

// DefaultProbeInterval applies when ProbeConfig.Interval is zero.
const DefaultProbeInterval = 30 * time.Second

// ProbeConfig holds configuration for a ProbeMonitor.
type ProbeConfig struct {
	// URL is fetched on every probe. Any HTTP response counts as online.
	URL string

	// Interval between probes.
	Interval time.Duration

	// OnlineKind is reported while probes succeed. The probe cannot tell
	// Wi-Fi from cellular, so the installation declares it.
	OnlineKind secondary.ConnectivityKind

	Clock      clock.Clock
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// ProbeMonitor derives connectivity from periodic HTTP probes.
type ProbeMonitor struct {
	*broadcaster

	url        string
	interval   time.Duration
	onlineKind secondary.ConnectivityKind
	clock      clock.Clock
	httpClient *http.Client
	logger     *slog.Logger
}

// NewProbeMonitor creates a ProbeMonitor. It reports no connectivity until
// the first probe succeeds.
func NewProbeMonitor(config ProbeConfig) *ProbeMonitor {
	if config.Interval <= 0 {
		config.Interval = DefaultProbeInterval
	}
	if config.OnlineKind == "" || config.OnlineKind == secondary.ConnectivityNone {
		config.OnlineKind = secondary.ConnectivityWifi
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	return &ProbeMonitor{
		broadcaster: newBroadcaster(secondary.Connectivity{Kind: secondary.ConnectivityNone}),
		url:         config.URL,
		interval:    config.Interval,
		onlineKind:  config.OnlineKind,
		clock:       config.Clock,
		httpClient:  config.HTTPClient,
		logger:      config.Logger.With("component", "connectivity"),
	}
}

// Run probes immediately and then every interval until ctx is done.
func (m *ProbeMonitor) Run(ctx context.Context) error {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	m.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe performs one probe and publishes the result if it changed.
func (m *ProbeMonitor) Probe(ctx context.Context) secondary.Connectivity {
	state := secondary.Connectivity{Kind: secondary.ConnectivityNone}
	if m.reachable(ctx) {
		state.Kind = m.onlineKind
	}
	if m.set(state) {
		m.logger.Info("connectivity changed", "network", state.Kind)
	}
	return state
}

func (m *ProbeMonitor) reachable(ctx context.Context) bool {
	request, err := http.NewRequestWithContext(ctx, http.MethodHead, m.url, nil)
	if err != nil {
		m.logger.Warn("invalid probe URL", "url", m.url, "error", err)
		return false
	}
	response, err := m.httpClient.Do(request)
	if err != nil {
		m.logger.Debug("probe failed", "url", m.url, "error", err)
		return false
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 4096))
	response.Body.Close()
	return true
}

// Ensure ProbeMonitor implements the interface
var _ secondary.ConnectivityMonitor = (*ProbeMonitor)(nil)
