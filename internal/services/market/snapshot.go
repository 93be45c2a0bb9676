package market

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/metrics"
)

// Reader takes per-query snapshots of a venue's pools.
type Reader struct {
	mu      sync.RWMutex
	sources map[domain.Venue]PoolSource
}

func NewReader() *Reader {
	return &Reader{sources: make(map[domain.Venue]PoolSource)}
}

// Register binds source as the pool registry of each given venue.
func (r *Reader) Register(source PoolSource, venues ...domain.Venue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range venues {
		r.sources[v] = source
	}
}

func (r *Reader) Venues() []domain.Venue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	venues := make([]domain.Venue, 0, len(r.sources))
	for v := range r.sources {
		venues = append(venues, v)
	}
	slices.Sort(venues)
	return venues
}

func (r *Reader) source(venue domain.Venue) (PoolSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[venue]
	return src, ok
}

// Snapshot reads every pool of venue once. Returned pools are private copies,
// so reserve changes at the source after this call are never observed.
func (r *Reader) Snapshot(ctx context.Context, venue domain.Venue) (*Snapshot, error) {
	src, ok := r.source(venue)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrVenueNotConfigured, venue)
	}

	start := time.Now()
	pools, err := src.Pools(ctx, venue)
	metrics.SnapshotDuration.WithLabelValues(venue.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("read %v pools: %w", venue, err)
	}

	snap := NewSnapshot(venue, pools)
	metrics.SnapshotPools.WithLabelValues(venue.String()).Set(float64(len(snap.pools)))
	return snap, nil
}

// FindPool looks up a pool trading the pair on venue directly at its source.
// The returned pool is a private copy.
func (r *Reader) FindPool(ctx context.Context, tokenA, tokenB common.Address, venue domain.Venue) (*domain.Pool, error) {
	if tokenA == tokenB {
		return nil, fmt.Errorf("%w: %s/%s on %v", ErrPoolNotFound, tokenA.Hex(), tokenB.Hex(), venue)
	}
	src, ok := r.source(venue)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrVenueNotConfigured, venue)
	}
	pool, err := src.FindPool(ctx, tokenA, tokenB, venue)
	if err != nil {
		return nil, err
	}
	return pool.Clone(), nil
}

// Snapshot is an immutable view of one venue's pools.
type Snapshot struct {
	venue domain.Venue
	pools []*domain.Pool
}

// NewSnapshot copies pools belonging to venue, ordered by address.
func NewSnapshot(venue domain.Venue, pools []*domain.Pool) *Snapshot {
	s := &Snapshot{
		venue: venue,
		pools: make([]*domain.Pool, 0, len(pools)),
	}
	for _, p := range pools {
		if p == nil || p.Venue != venue || p.TokenA == p.TokenB {
			continue
		}
		s.pools = append(s.pools, p.Clone())
	}
	slices.SortFunc(s.pools, func(a, b *domain.Pool) int {
		return bytes.Compare(a.Address.Bytes(), b.Address.Bytes())
	})
	return s
}

func (s *Snapshot) Venue() domain.Venue {
	return s.venue
}

func (s *Snapshot) Pools() []*domain.Pool {
	return s.pools
}

func (s *Snapshot) Len() int {
	return len(s.pools)
}
