package worker

import (
	"context"
	"log/slog"
	"time"
)

// Journal is the verdict store the pruner trims.
type Journal interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner deletes journaled verdicts older than the retention period.
type Pruner struct {
	retention time.Duration
	journal   Journal
	now       func() time.Time
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, journal Journal) *Pruner {
	return &Pruner{
		retention: retention,
		journal:   journal,
		now:       time.Now,
	}
}

// Interval is how often the pruner runs: a tenth of the retention, between 1 minute and 1 hour.
func (p *Pruner) Interval() time.Duration {
	interval := min(p.retention/10, 1*time.Hour)
	return max(interval, 1*time.Minute)
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	ticker := time.NewTicker(p.Interval())
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := p.now().Add(-p.retention)

	n, err := p.journal.PruneBefore(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to prune journal", "cutoff", cutoff, "error", err)
		return
	}
	if n > 0 {
		slog.Info("Pruned journal", "deleted", n, "cutoff", cutoff)
	}
}
