package chain

import (
	"context"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

// Node is the boundary between the health engine and a locally monitored node.
type Node interface {
	// GetSyncStatus returns the node's current synchronization status
	GetSyncStatus(ctx context.Context) (domain.SyncStatus, error)

	// GetBlockHeight returns the node's current chain head
	GetBlockHeight(ctx context.Context) (uint64, error)
}

// Reference reports the chain head of a network as seen by an external service.
type Reference interface {
	// BlockHeight returns the network's latest block height
	BlockHeight(ctx context.Context, network string) (uint64, error)
}
