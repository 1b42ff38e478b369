package toio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/toiolab/toio/internal/ble"
)

// fakeScanner replays a fixed advertisement sequence.
type fakeScanner struct {
	advs []ble.Advertisement
	err  error
}

func (s *fakeScanner) Scan(ctx context.Context, timeout time.Duration, found func(ble.Advertisement)) error {
	if s.err != nil {
		return s.err
	}
	for _, adv := range s.advs {
		found(adv)
	}
	return nil
}

func newTestSearcher(advs []ble.Advertisement) *Searcher {
	return &Searcher{
		scanner: &fakeScanner{advs: advs},
		dial:    func(ble.Advertisement) ble.Transport { return newFakeTransport() },
		cfg:     testConfig(),
	}
}

func TestAllRanksByStrongestSignal(t *testing.T) {
	s := newTestSearcher([]ble.Advertisement{
		{Address: "mid", Name: "toio Core Cube", RSSI: -55},
		{Address: "far", Name: "toio Core Cube", RSSI: -70},
		{Address: "near", Name: "toio Core Cube", RSSI: -40},
	})

	cubes, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want := []string{"near", "mid", "far"}
	if len(cubes) != len(want) {
		t.Fatalf("found %d cubes, want %d", len(cubes), len(want))
	}
	for i, addr := range want {
		if cubes[i].Address() != addr {
			t.Errorf("rank %d = %s (rssi %d), want %s", i, cubes[i].Address(), cubes[i].RSSI(), addr)
		}
	}
}

func TestAllKeepsLatestSignalSample(t *testing.T) {
	// "walker" starts far away and ends closest; only its latest sample
	// counts, so it must outrank "static".
	s := newTestSearcher([]ble.Advertisement{
		{Address: "walker", RSSI: -80},
		{Address: "static", RSSI: -50},
		{Address: "walker", RSSI: -42},
	})

	cubes, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(cubes) != 2 {
		t.Fatalf("found %d cubes, want 2 (duplicates collapsed)", len(cubes))
	}
	if cubes[0].Address() != "walker" {
		t.Errorf("nearest = %s, want walker with its refreshed signal", cubes[0].Address())
	}
	if cubes[0].RSSI() != -42 {
		t.Errorf("walker RSSI = %d, want the latest sample -42", cubes[0].RSSI())
	}
}

func TestAllBreaksTiesByFirstSeen(t *testing.T) {
	s := newTestSearcher([]ble.Advertisement{
		{Address: "first", RSSI: -50},
		{Address: "second", RSSI: -50},
		{Address: "third", RSSI: -50},
	})

	for run := 0; run < 5; run++ {
		cubes, err := s.All(context.Background())
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		for i, addr := range []string{"first", "second", "third"} {
			if cubes[i].Address() != addr {
				t.Fatalf("run %d rank %d = %s, want %s", run, i, cubes[i].Address(), addr)
			}
		}
	}
}

func TestNearestEmptyScan(t *testing.T) {
	s := newTestSearcher(nil)
	if _, err := s.Nearest(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Nearest on empty scan = %v, want ErrNotFound", err)
	}
}

func TestAllPropagatesScanError(t *testing.T) {
	s := newTestSearcher(nil)
	s.scanner = &fakeScanner{err: errors.New("adapter off")}
	if _, err := s.All(context.Background()); err == nil {
		t.Fatal("All swallowed the scan error")
	}
}

func TestLateNameBackfill(t *testing.T) {
	// Some platforms deliver the local name only on a later advertisement.
	s := newTestSearcher([]ble.Advertisement{
		{Address: "cube", Name: "", RSSI: -60},
		{Address: "cube", Name: "toio Core Cube", RSSI: -61},
	})

	cubes, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if cubes[0].Name() != "toio Core Cube" {
		t.Errorf("Name = %q, want backfilled toio Core Cube", cubes[0].Name())
	}
}
