package storage

import (
	"path/filepath"
	"testing"

	"github.com/toiolab/toio"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "toio.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	var version int
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("query schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toio.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	db.Close()
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	runs := NewRunRepository(db)

	run, err := runs.Create("toio Core Cube", "AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if run.RunID == "" {
		t.Fatal("run id must not be empty")
	}

	got, err := runs.Get(run.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CubeName != "toio Core Cube" || got.CubeAddress != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("Get = %+v, want the created run", got)
	}
	if got.EndedAt != nil {
		t.Error("unfinished run must have no end time")
	}

	if err := runs.Finish(run.RunID); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	got, err = runs.Get(run.RunID)
	if err != nil {
		t.Fatalf("Get after Finish: %v", err)
	}
	if got.EndedAt == nil {
		t.Error("finished run must have an end time")
	}
}

func TestLatestRun(t *testing.T) {
	db := openTestDB(t)
	runs := NewRunRepository(db)

	if _, err := runs.Latest(); err == nil {
		t.Error("Latest on empty database must fail")
	}

	if _, err := runs.Create("first", "01"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := runs.Create("second", "02")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	latest, err := runs.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.RunID != second.RunID {
		t.Errorf("Latest = %s, want the newest run %s", latest.RunID, second.RunID)
	}
}

func TestTraceAppendAndReadBack(t *testing.T) {
	db := openTestDB(t)
	runs := NewRunRepository(db)
	traces := NewTraceRepository(db)

	run, err := runs.Create("cube", "addr")
	if err != nil {
		t.Fatalf("Create run: %v", err)
	}

	for i, kind := range []string{"button", "battery", "position"} {
		if _, err := traces.Append(run.RunID, i, int64(i*100), kind, "{}"); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	events, err := traces.ByRun(run.RunID)
	if err != nil {
		t.Fatalf("ByRun: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	for i, e := range events {
		if e.Seq != i {
			t.Errorf("event %d has seq %d, recording order lost", i, e.Seq)
		}
	}

	n, err := traces.Count(run.RunID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	db := openTestDB(t)

	rec, err := NewRecorder(db, "cube", "addr")
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	in := []toio.Event{
		toio.ButtonEvent{Pressed: true},
		toio.BatteryEvent{Level: 80},
		toio.PositionEvent{Position: toio.Position{X: 250, Y: 120, Angle: 45}},
		toio.PositionMissedEvent{},
	}
	for _, ev := range in {
		if err := rec.Record(ev); err != nil {
			t.Fatalf("Record(%T): %v", ev, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows, err := NewTraceRepository(db).ByRun(rec.RunID())
	if err != nil {
		t.Fatalf("ByRun: %v", err)
	}
	if len(rows) != len(in) {
		t.Fatalf("recorded %d events, want %d", len(rows), len(in))
	}

	for i, row := range rows {
		ev, err := DecodeEvent(row.EventType, row.PayloadJSON)
		if err != nil {
			t.Fatalf("DecodeEvent(%s): %v", row.EventType, err)
		}
		if ev != in[i] {
			t.Errorf("event %d = %#v, want %#v", i, ev, in[i])
		}
	}
}

func TestEncodeEventRejectsUnknown(t *testing.T) {
	if _, err := DecodeEvent("nonsense", "{}"); err == nil {
		t.Error("DecodeEvent must reject unknown kinds")
	}
}
