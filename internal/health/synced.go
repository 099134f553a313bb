package health

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/nodehealth/internal/core/domain"
	"github.com/vietddude/nodehealth/internal/infra/chain"
	"github.com/vietddude/nodehealth/internal/metrics"
)

// SyncedChecker judges a node by its distance from the network head alone.
type SyncedChecker struct {
	node               chain.Node
	reference          NetworkHeightSource
	network            string
	maxBlockDifference int64
	label              string
}

// NewSyncedChecker creates a SyncedChecker. maxBlockDifference <= 0 means the default.
func NewSyncedChecker(
	node chain.Node,
	reference NetworkHeightSource,
	network string,
	maxBlockDifference int64,
) *SyncedChecker {
	if maxBlockDifference <= 0 {
		maxBlockDifference = DefaultMaxBlockDifference
	}
	return &SyncedChecker{
		node:               node,
		reference:          reference,
		network:            network,
		maxBlockDifference: maxBlockDifference,
		label:              DefaultNodeLabel,
	}
}

// SetNodeLabel names the node in exported metrics.
func (c *SyncedChecker) SetNodeLabel(label string) {
	c.label = label
}

// Heights fetches the local and network block heights concurrently.
func (c *SyncedChecker) Heights(ctx context.Context) (local, network uint64, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := c.node.GetBlockHeight(gctx)
		local = h
		return err
	})
	g.Go(func() error {
		h, err := c.reference.GetNetworkBlockHeight(gctx, c.network)
		network = h
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return local, network, nil
}

// Evaluate is healthy iff network - local <= maxBlockDifference. The diagnostic is
// the signed local - network difference.
func (c *SyncedChecker) Evaluate(ctx context.Context) domain.Verdict {
	local, network, err := c.Heights(ctx)
	if err != nil {
		slog.Warn("Block height comparison failed", "network", c.network, "error", err)
		return domain.Failed(err)
	}
	metrics.LocalBlock.WithLabelValues(c.label).Set(float64(local))

	verdict := domain.Verdict{
		Healthy:    int64(network)-int64(local) <= c.maxBlockDifference,
		Diagnostic: domain.BlockDifference(local, network),
	}
	if !verdict.Healthy {
		slog.Warn("Node behind network",
			"local_block", local,
			"network_block", network,
			"max_difference", c.maxBlockDifference,
		)
	}
	return verdict
}
