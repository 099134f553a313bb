package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 1000
)

type checkRow struct {
	ID         string    `db:"id"`
	Node       string    `db:"node"`
	Mode       string    `db:"mode"`
	Healthy    bool      `db:"healthy"`
	Diagnostic string    `db:"diagnostic"`
	CheckedAt  time.Time `db:"checked_at"`
}

func toRow(rec domain.CheckRecord) checkRow {
	return checkRow{
		ID:         rec.ID,
		Node:       rec.Node,
		Mode:       rec.Mode,
		Healthy:    rec.Healthy,
		Diagnostic: rec.Diagnostic,
		CheckedAt:  rec.CheckedAt,
	}
}

func (r checkRow) toDomain() domain.CheckRecord {
	return domain.CheckRecord{
		ID:         r.ID,
		Node:       r.Node,
		Mode:       r.Mode,
		Healthy:    r.Healthy,
		Diagnostic: r.Diagnostic,
		CheckedAt:  r.CheckedAt.UTC(),
	}
}

// CheckRepo journals verdicts in the health_checks table.
type CheckRepo struct {
	db *DB
}

// NewCheckRepo creates a new PostgreSQL verdict journal.
func NewCheckRepo(db *DB) *CheckRepo {
	return &CheckRepo{db: db}
}

// Record inserts one verdict. Re-recording the same id is a no-op.
func (r *CheckRepo) Record(ctx context.Context, rec domain.CheckRecord) error {
	query := `
		INSERT INTO health_checks (id, node, mode, healthy, diagnostic, checked_at)
		VALUES (:id, :node, :mode, :healthy, :diagnostic, :checked_at)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.NamedExecContext(ctx, query, toRow(rec)); err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}
	return nil
}

// ListRecent returns the latest verdicts, newest first. An empty node lists all nodes.
func (r *CheckRepo) ListRecent(ctx context.Context, node string, limit int) ([]domain.CheckRecord, error) {
	limit = clampLimit(limit)

	var rows []checkRow
	var err error
	if node == "" {
		err = r.db.SelectContext(ctx, &rows, `
			SELECT id, node, mode, healthy, diagnostic, checked_at
			FROM health_checks
			ORDER BY checked_at DESC
			LIMIT $1
		`, limit)
	} else {
		err = r.db.SelectContext(ctx, &rows, `
			SELECT id, node, mode, healthy, diagnostic, checked_at
			FROM health_checks
			WHERE node = $1
			ORDER BY checked_at DESC
			LIMIT $2
		`, node, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}

	records := make([]domain.CheckRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toDomain())
	}
	return records, nil
}

// PruneBefore deletes verdicts older than cutoff and returns how many were removed.
func (r *CheckRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM health_checks WHERE checked_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune checks: %w", err)
	}
	return res.RowsAffected()
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}
