package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/toiolab/toio"
)

// Recorder writes a cube's event stream into one run.
type Recorder struct {
	runs   *RunRepository
	traces *TraceRepository
	run    *Run
	seq    int
}

// NewRecorder starts a new run for the given cube.
func NewRecorder(db *DB, cubeName, cubeAddress string) (*Recorder, error) {
	runs := NewRunRepository(db)
	run, err := runs.Create(cubeName, cubeAddress)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		runs:   runs,
		traces: NewTraceRepository(db),
		run:    run,
	}, nil
}

// RunID returns the id of the run being recorded.
func (r *Recorder) RunID() string {
	return r.run.RunID
}

// Record appends one event to the run.
func (r *Recorder) Record(ev toio.Event) error {
	kind, payload, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	tsMs := time.Since(r.run.StartedAt).Milliseconds()
	if _, err := r.traces.Append(r.run.RunID, r.seq, tsMs, kind, payload); err != nil {
		return err
	}
	r.seq++
	return nil
}

// Close marks the run as finished.
func (r *Recorder) Close() error {
	return r.runs.Finish(r.run.RunID)
}

// EncodeEvent serializes an event to its type name and JSON payload.
func EncodeEvent(ev toio.Event) (kind, payload string, err error) {
	switch ev.(type) {
	case toio.BatteryEvent:
		kind = "battery"
	case toio.ButtonEvent:
		kind = "button"
	case toio.MotionEvent:
		kind = "motion"
	case toio.PositionEvent:
		kind = "position"
	case toio.PositionMissedEvent:
		kind = "position_missed"
	case toio.StandardIDEvent:
		kind = "standard_id"
	case toio.StandardIDMissedEvent:
		kind = "standard_id_missed"
	default:
		return "", "", fmt.Errorf("unknown event type %T", ev)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode %s event: %w", kind, err)
	}
	return kind, string(data), nil
}

// DecodeEvent reverses EncodeEvent.
func DecodeEvent(kind, payload string) (toio.Event, error) {
	var err error
	switch kind {
	case "battery":
		var ev toio.BatteryEvent
		err = json.Unmarshal([]byte(payload), &ev)
		return ev, err
	case "button":
		var ev toio.ButtonEvent
		err = json.Unmarshal([]byte(payload), &ev)
		return ev, err
	case "motion":
		var ev toio.MotionEvent
		err = json.Unmarshal([]byte(payload), &ev)
		return ev, err
	case "position":
		var ev toio.PositionEvent
		err = json.Unmarshal([]byte(payload), &ev)
		return ev, err
	case "position_missed":
		return toio.PositionMissedEvent{}, nil
	case "standard_id":
		var ev toio.StandardIDEvent
		err = json.Unmarshal([]byte(payload), &ev)
		return ev, err
	case "standard_id_missed":
		return toio.StandardIDMissedEvent{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", kind)
	}
}
