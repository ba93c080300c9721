package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/status"
)

// DefaultHistoryLimit caps History when no limit is given
const DefaultHistoryLimit = 50

// Snapshot is one recorded normalized status for a deposit address
type Snapshot struct {
	ID             string                            `json:"id"`
	DepositAddress string                            `json:"depositAddress"`
	Status         string                            `json:"status"`
	UpdatedAt      string                            `json:"updatedAt"`
	RecordedAt     time.Time                         `json:"recordedAt"`
	Normalized     *status.NormalizedExecutionStatus `json:"normalized"`
}

// SnapshotRepo stores status snapshots in SQLite
type SnapshotRepo struct {
	db  *sql.DB
	now func() time.Time
}

var _ status.SnapshotRecorder = (*SnapshotRepo)(nil)

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db, now: time.Now}
}

// Record stores st unless it repeats the latest snapshot's status and updatedAt.
// The comparison and the insert run as one statement, so concurrent pollers
// of the same address cannot both record the same pair.
func (r *SnapshotRepo) Record(ctx context.Context, depositAddress string, st *status.NormalizedExecutionStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO status_snapshots (id, deposit_address, status, updated_at, payload_json, recorded_at)
		SELECT ?,?,?,?,?,?
		WHERE NOT EXISTS (
			SELECT 1 FROM (
				SELECT status, updated_at FROM status_snapshots
				WHERE deposit_address = ? ORDER BY rowid DESC LIMIT 1
			) WHERE status = ? AND updated_at = ?
		)`,
		uuid.NewString(), depositAddress, st.Status, st.UpdatedAt, string(data), r.now().UnixNano(),
		depositAddress, st.Status, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Latest returns the newest snapshot, or nil when none exists.
func (r *SnapshotRepo) Latest(ctx context.Context, depositAddress string) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, deposit_address, status, updated_at, payload_json, recorded_at
		FROM status_snapshots WHERE deposit_address = ? ORDER BY rowid DESC LIMIT 1`,
		depositAddress,
	)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// History returns up to limit snapshots, newest first.
func (r *SnapshotRepo) History(ctx context.Context, depositAddress string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, deposit_address, status, updated_at, payload_json, recorded_at
		FROM status_snapshots WHERE deposit_address = ? ORDER BY rowid DESC LIMIT ?`,
		depositAddress, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (*Snapshot, error) {
	var (
		s          Snapshot
		payload    string
		recordedAt int64
	)
	if err := sc.Scan(&s.ID, &s.DepositAddress, &s.Status, &s.UpdatedAt, &payload, &recordedAt); err != nil {
		return nil, err
	}

	s.RecordedAt = time.Unix(0, recordedAt).UTC()
	s.Normalized = &status.NormalizedExecutionStatus{}
	if err := json.Unmarshal([]byte(payload), s.Normalized); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.ID, err)
	}
	return &s, nil
}
