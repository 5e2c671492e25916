package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/xpand/internal/event"
)

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Entry is one recorded input with its results.
type Entry struct {
	Seq     int64
	Input   event.Event
	Outputs []event.Event
}

// Sessions lists recorded sessions, oldest first.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.label, s.started_at, s.store_matches, s.store_hash,
		       (SELECT COUNT(*) FROM inputs i WHERE i.session_id = s.id)
		FROM sessions s
		ORDER BY s.started_at, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Session returns one session.
func (j *Journal) Session(ctx context.Context, id string) (Session, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT s.id, s.label, s.started_at, s.store_matches, s.store_hash,
		       (SELECT COUNT(*) FROM inputs i WHERE i.session_id = s.id)
		FROM sessions s
		WHERE s.id = ?
	`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return s, nil
}

// LatestSession returns the most recently started session.
func (j *Journal) LatestSession(ctx context.Context) (Session, error) {
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return Session{}, err
	}
	if len(sessions) == 0 {
		return Session{}, ErrSessionNotFound
	}
	return sessions[len(sessions)-1], nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (Session, error) {
	var s Session
	var started string
	if err := sc.Scan(&s.ID, &s.Label, &started, &s.StoreMatches, &s.StoreHash, &s.Inputs); err != nil {
		return Session{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	s.StartedAt = t
	return s, nil
}

// Entries returns every input of a session in order, each with its
// outputs.
func (j *Journal) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	if _, err := j.Session(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, source_id, kind, payload FROM inputs
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}
	var entries []Entry
	index := make(map[int64]int)
	for rows.Next() {
		var seq int64
		ev, err := scanEvent(rows, &seq)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("read inputs: %w", err)
		}
		index[seq] = len(entries)
		entries = append(entries, Entry{Seq: seq, Input: ev})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	rows, err = j.db.QueryContext(ctx, `
		SELECT input_seq, source_id, kind, payload FROM outputs
		WHERE session_id = ?
		ORDER BY input_seq, ord
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read outputs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var seq int64
		ev, err := scanEvent(rows, &seq)
		if err != nil {
			return nil, fmt.Errorf("read outputs: %w", err)
		}
		i, ok := index[seq]
		if !ok {
			return nil, fmt.Errorf("read outputs: output for unknown input %d", seq)
		}
		entries[i].Outputs = append(entries[i].Outputs, ev)
	}
	return entries, rows.Err()
}

func scanEvent(sc scanner, seq *int64) (event.Event, error) {
	var (
		sourceID int64
		kind     string
		payload  string
	)
	if err := sc.Scan(seq, &sourceID, &kind, &payload); err != nil {
		return event.Event{}, err
	}
	t, err := event.DecodeType(event.Kind(kind), []byte(payload))
	if err != nil {
		return event.Event{}, err
	}
	return event.New(event.SourceID(sourceID), t), nil
}
