package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/xpand/internal/event"
)

// Session describes one recorded engine run.
type Session struct {
	ID           string
	Label        string
	StartedAt    time.Time
	StoreMatches int
	// StoreHash is the fingerprint of the matches the session ran with.
	StoreHash string
	Inputs    int
}

// StartSession registers a session. Starting an existing session is a
// no-op.
func (j *Journal) StartSession(ctx context.Context, s Session) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, label, started_at, store_matches, store_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, s.ID, s.Label, s.StartedAt.UTC().Format(time.RFC3339Nano), s.StoreMatches, s.StoreHash)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// Record stores one input and the results it produced, atomically. NOOP
// results are skipped.
func (j *Journal) Record(ctx context.Context, sessionID string, seq int64, input event.Event, results []event.Event) error {
	payload, err := event.EncodeType(input.Type)
	if err != nil {
		return fmt.Errorf("record input %d: %w", seq, err)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record input %d: begin: %w", seq, err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO inputs (session_id, seq, source_id, kind, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, sessionID, seq, int64(input.SourceID), string(input.Kind()), string(payload)); err != nil {
		return fmt.Errorf("record input %d: %w", seq, err)
	}

	ord := 0
	for _, r := range results {
		if r.IsNoop() {
			continue
		}
		data, err := event.EncodeType(r.Type)
		if err != nil {
			return fmt.Errorf("record output %d.%d: %w", seq, ord, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO outputs (session_id, input_seq, ord, source_id, kind, payload)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, sessionID, seq, ord, int64(r.SourceID), string(r.Kind()), string(data)); err != nil {
			return fmt.Errorf("record output %d.%d: %w", seq, ord, err)
		}
		ord++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record input %d: commit: %w", seq, err)
	}
	return nil
}
