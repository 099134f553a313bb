// Package health decides whether a node is synchronized with its network, or visibly
// making progress toward it, and serves that verdict to load balancers.
package health

import (
	"context"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

const (
	// DefaultMaxBlockDifference is how far behind the network an idle node may be.
	DefaultMaxBlockDifference = 3

	// DefaultMaxSyncFreeze is how long a syncing node may show no progress.
	DefaultMaxSyncFreeze = 150 * time.Second

	// DefaultNodeLabel names the node in metrics until SetNodeLabel is called.
	DefaultNodeLabel = "default"
)

// Mode names the policy a Checker applies.
type Mode string

const (
	ModeSyncing Mode = "syncing" // synced, or syncing with progress
	ModeSynced  Mode = "synced"  // block difference only
	ModeStatic  Mode = "static"  // fixed response
)

// Checker produces a verdict for one health-check request.
type Checker interface {
	Evaluate(ctx context.Context) domain.Verdict
}

// NetworkHeightSource returns the reference block height of a network.
type NetworkHeightSource interface {
	GetNetworkBlockHeight(ctx context.Context, network string) (uint64, error)
}

// Clock is the time source used for freeze and cache windows.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}
