package toio

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/toiolab/toio/internal/ble"
)

// Searcher discovers nearby toio cubes and ranks them by signal strength.
type Searcher struct {
	scanner ble.Scanner
	dial    func(ble.Advertisement) ble.Transport
	cfg     *config
}

// NewSearcher enables the platform BLE adapter and returns a searcher bound
// to it.
func NewSearcher(opts ...Option) (*Searcher, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	adapter, err := ble.NewAdapter()
	if err != nil {
		return nil, err
	}

	return &Searcher{
		scanner: adapter,
		dial:    adapter.Transport,
		cfg:     cfg,
	}, nil
}

// observation is one deduplicated scan entry. order preserves first-seen
// position for deterministic ranking of equal signal strengths.
type observation struct {
	adv   ble.Advertisement
	order int
}

// All scans for up to the configured window and returns every cube seen,
// nearest first (descending signal strength, ties by first observation).
// Repeated sightings of a cube keep only the latest signal-strength sample.
func (s *Searcher) All(ctx context.Context) ([]*Cube, error) {
	var mu sync.Mutex
	seen := make(map[string]*observation)
	order := 0

	err := s.scanner.Scan(ctx, s.cfg.scanTimeout, func(adv ble.Advertisement) {
		mu.Lock()
		defer mu.Unlock()
		if obs, ok := seen[adv.Address]; ok {
			obs.adv.RSSI = adv.RSSI
			if adv.Name != "" {
				obs.adv.Name = adv.Name
			}
			return
		}
		seen[adv.Address] = &observation{adv: adv, order: order}
		order++
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	all := make([]*observation, 0, len(seen))
	for _, obs := range seen {
		all = append(all, obs)
	}
	mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].adv.RSSI != all[j].adv.RSSI {
			return all[i].adv.RSSI > all[j].adv.RSSI
		}
		return all[i].order < all[j].order
	})

	cubes := make([]*Cube, len(all))
	for i, obs := range all {
		cubes[i] = s.newCube(obs.adv)
	}
	return cubes, nil
}

// Nearest returns the cube with the strongest signal, or ErrNotFound when
// the scan window closes without a match.
func (s *Searcher) Nearest(ctx context.Context) (*Cube, error) {
	cubes, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(cubes) == 0 {
		return nil, ErrNotFound
	}
	return cubes[0], nil
}

func (s *Searcher) newCube(adv ble.Advertisement) *Cube {
	return &Cube{
		name:    adv.Name,
		address: adv.Address,
		rssi:    adv.RSSI,
		sess: newSession(s.dial(adv), s.cfg, logrus.Fields{
			"cube": adv.Address,
		}),
	}
}

// Search scans with a fresh adapter and returns all cubes found, nearest
// first. Convenience for single-shot discovery.
func Search(ctx context.Context, opts ...Option) ([]*Cube, error) {
	s, err := NewSearcher(opts...)
	if err != nil {
		return nil, err
	}
	return s.All(ctx)
}

// Nearest scans with a fresh adapter and returns the strongest-signal cube.
func Nearest(ctx context.Context, opts ...Option) (*Cube, error) {
	s, err := NewSearcher(opts...)
	if err != nil {
		return nil, err
	}
	return s.Nearest(ctx)
}
