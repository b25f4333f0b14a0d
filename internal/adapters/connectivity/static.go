package connectivity

import "github.com/example/watchful/internal/ports/secondary"

// Static is a ConnectivityMonitor whose state only changes through Set.
// It serves fixed installations and one-shot CLI runs.
type Static struct {
	*broadcaster
}

// NewStatic creates a Static monitor reporting kind.
func NewStatic(kind secondary.ConnectivityKind) *Static {
	return &Static{broadcaster: newBroadcaster(secondary.Connectivity{Kind: kind})}
}

// Set changes the reported state, notifying subscribers on change.
func (s *Static) Set(kind secondary.ConnectivityKind) {
	s.set(secondary.Connectivity{Kind: kind})
}

// Ensure Static implements the interface
var _ secondary.ConnectivityMonitor = (*Static)(nil)
