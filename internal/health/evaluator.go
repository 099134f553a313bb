package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
	"github.com/vietddude/nodehealth/internal/infra/chain"
	"github.com/vietddude/nodehealth/internal/metrics"
)

// Evaluator reports a node healthy while it is synced, or while it is syncing and has
// shown progress within maxSyncFreeze. One Evaluator owns the freeze tracking of one node.
type Evaluator struct {
	node          chain.Node
	synced        *SyncedChecker
	maxSyncFreeze time.Duration
	clock         Clock
	label         string

	mu           sync.Mutex
	lastUnique   *domain.SyncStatus
	lastUniqueAt time.Time
}

// NewEvaluator creates an Evaluator. Idle nodes are judged by synced.
// maxSyncFreeze <= 0 means the default; a nil clock means the wall clock.
func NewEvaluator(
	node chain.Node,
	synced *SyncedChecker,
	maxSyncFreeze time.Duration,
	clock Clock,
) *Evaluator {
	if maxSyncFreeze <= 0 {
		maxSyncFreeze = DefaultMaxSyncFreeze
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Evaluator{
		node:          node,
		synced:        synced,
		maxSyncFreeze: maxSyncFreeze,
		clock:         clock,
		label:         DefaultNodeLabel,
	}
}

// SetNodeLabel names the node in exported metrics, including those of the synced check.
func (e *Evaluator) SetNodeLabel(label string) {
	e.label = label
	if e.synced != nil {
		e.synced.SetNodeLabel(label)
	}
}

// Evaluate polls the node once and returns its verdict.
//
// A failed poll is unhealthy and leaves the freeze tracking untouched. A syncing node
// is healthy when it progressed since the last distinct status or has been frozen for
// at most maxSyncFreeze; the diagnostic is the status payload either way. An idle node
// is judged by its block difference from the network.
func (e *Evaluator) Evaluate(ctx context.Context) domain.Verdict {
	status, err := e.node.GetSyncStatus(ctx)
	if err != nil {
		slog.Warn("Sync status poll failed", "error", err)
		return domain.Failed(err)
	}

	if status.IsIdle() {
		return e.synced.Evaluate(ctx)
	}
	metrics.SyncCurrentBlock.WithLabelValues(e.label).Set(float64(status.CurrentBlock))

	verdict := domain.Verdict{
		Diagnostic: status.Payload(),
		Structured: len(status.Raw) > 0,
	}
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if Progressed(status, e.lastUnique) {
		e.lastUnique = &status
		e.lastUniqueAt = now
		metrics.FrozenSeconds.WithLabelValues(e.label).Set(0)

		verdict.Healthy = true
		return verdict
	}

	frozenFor := now.Sub(e.lastUniqueAt)
	metrics.FrozenSeconds.WithLabelValues(e.label).Set(frozenFor.Seconds())

	verdict.Healthy = frozenFor <= e.maxSyncFreeze
	if !verdict.Healthy {
		slog.Warn("Sync frozen",
			"current_block", status.CurrentBlock,
			"frozen_for", frozenFor.Round(time.Second),
			"max_sync_freeze", e.maxSyncFreeze,
		)
	}
	return verdict
}

// LastProgress returns the last distinct syncing status and when it was observed.
// ok is false until the node has been seen syncing.
func (e *Evaluator) LastProgress() (status domain.SyncStatus, at time.Time, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastUnique == nil {
		return domain.SyncStatus{}, time.Time{}, false
	}
	return *e.lastUnique, e.lastUniqueAt, true
}
