package hwinfo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/go-kratos/kratos/v2/log"
)

// ErrCollectionRunning is returned when a refresh is requested while another
// collection pass is still in flight.
var ErrCollectionRunning = errors.New("hardware collection already running")

// CollectionState describes what the service is currently doing.
type CollectionState int

const (
	CollectionIdle CollectionState = iota
	CollectionRunning
)

func (s CollectionState) String() string {
	if s == CollectionRunning {
		return "running"
	}
	return "idle"
}

// Service owns the most recent snapshot and enforces the single-flight rule
// for collection. The snapshot is handed off as a whole-value replacement, so
// readers never observe a partially collected one.
type Service struct {
	log       *log.Helper
	collector *Collector

	running atomic.Bool

	mu     sync.RWMutex
	latest *Snapshot
}

// NewService wraps a collector in a single-flight refresh guard.
func NewService(logger log.Logger, c *Collector) *Service {
	return &Service{
		log:       log.NewHelper(log.With(logger, "module", "hwinfo")),
		collector: c,
	}
}

// State reports whether a collection pass is in flight.
func (s *Service) State() CollectionState {
	if s.running.Load() {
		return CollectionRunning
	}
	return CollectionIdle
}

// Latest returns the most recent snapshot, or nil when none has completed.
func (s *Service) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Refresh runs a full collection pass and replaces the stored snapshot.
// Only one pass may run at a time.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCollectionRunning
	}
	defer s.running.Store(false)

	s.log.Info("collecting hardware snapshot")
	snap := s.collector.CollectAll(ctx)

	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	s.log.Infof("hardware snapshot collected: %d disks, %d gpus", len(snap.Disks), len(snap.GPUs))
	return snap, nil
}
