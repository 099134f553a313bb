package health

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubNode struct {
	mu          sync.Mutex
	status      domain.SyncStatus
	statusErr   error
	height      uint64
	heightErr   error
	statusCalls int
	heightCalls int
}

func (n *stubNode) GetSyncStatus(ctx context.Context) (domain.SyncStatus, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusCalls++
	return n.status, n.statusErr
}

func (n *stubNode) GetBlockHeight(ctx context.Context) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.heightCalls++
	return n.height, n.heightErr
}

func (n *stubNode) set(status domain.SyncStatus, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.status = status
	n.statusErr = err
}

type stubReference struct {
	mu     sync.Mutex
	height uint64
	err    error
	calls  int
}

func (r *stubReference) BlockHeight(ctx context.Context, network string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.height, r.err
}

func (r *stubReference) GetNetworkBlockHeight(ctx context.Context, network string) (uint64, error) {
	return r.BlockHeight(ctx, network)
}

func (r *stubReference) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// syncing builds a syncing status the way the node client would.
func syncing(current uint64, pulled *uint64) domain.SyncStatus {
	fields := map[string]string{"currentBlock": fmt.Sprintf("0x%x", current)}
	if pulled != nil {
		fields["pulledStates"] = fmt.Sprintf("0x%x", *pulled)
	}
	raw, _ := json.Marshal(fields)
	return domain.SyncStatus{
		Syncing:      true,
		CurrentBlock: current,
		PulledStates: pulled,
		Raw:          raw,
	}
}

func u64(v uint64) *uint64 { return &v }
