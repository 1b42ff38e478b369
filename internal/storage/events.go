package storage

import (
	"fmt"
)

// TraceEvent is one recorded cube event.
type TraceEvent struct {
	EventID     int64
	RunID       string
	Seq         int
	TsMs        int64 // milliseconds since the run started
	EventType   string
	PayloadJSON string
}

// TraceRepository provides CRUD operations for recorded events.
type TraceRepository struct {
	db *DB
}

// NewTraceRepository creates a new trace repository.
func NewTraceRepository(db *DB) *TraceRepository {
	return &TraceRepository{db: db}
}

// Append stores one event and returns its ID.
func (r *TraceRepository) Append(runID string, seq int, tsMs int64, eventType, payloadJSON string) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO events (run_id, seq, ts_ms, event_type, payload_json)
		VALUES (?, ?, ?, ?, ?)
	`, runID, seq, tsMs, eventType, payloadJSON)
	if err != nil {
		return 0, fmt.Errorf("failed to append event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get event ID: %w", err)
	}

	return id, nil
}

// ByRun retrieves all events of a run in recording order.
func (r *TraceRepository) ByRun(runID string) ([]TraceEvent, error) {
	rows, err := r.db.Query(`
		SELECT event_id, run_id, seq, ts_ms, event_type, payload_json
		FROM events
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []TraceEvent
	for rows.Next() {
		var e TraceEvent
		if err := rows.Scan(&e.EventID, &e.RunID, &e.Seq, &e.TsMs, &e.EventType, &e.PayloadJSON); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Count returns the number of events in a run.
func (r *TraceRepository) Count(runID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM events WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
