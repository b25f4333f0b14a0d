package secondary

import "context"

// SensorPipeline is the continuous on-device motion sensing pipeline.
// The gate only starts and stops it; sampling is the pipeline's business.
type SensorPipeline interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

// ConnectivityMonitor reports the device's network state.
type ConnectivityMonitor interface {
	// Current returns the latest known state.
	Current() Connectivity

	// Subscribe delivers state changes until cancel is called.
	Subscribe() (changes <-chan Connectivity, cancel func())
}

// ConnectivityKind is the kind of network the device is attached to.
type ConnectivityKind string

const (
	ConnectivityNone     ConnectivityKind = "none"
	ConnectivityWifi     ConnectivityKind = "wifi"
	ConnectivityCellular ConnectivityKind = "cellular"
	ConnectivityEthernet ConnectivityKind = "ethernet"
)

// Connectivity is a snapshot of the device's network state.
type Connectivity struct {
	Kind ConnectivityKind
}

// Online reports whether any network is available.
func (c Connectivity) Online() bool {
	return c.Kind != "" && c.Kind != ConnectivityNone
}
