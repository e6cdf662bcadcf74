package store

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/pkg/catalog"
)

// Safe wraps a Store so that every call degrades to a safe default
// instead of failing: an empty snapshot on read, a dropped write on
// save. The capture engine only ever talks to a Safe — the backing
// host can disappear at any time and no failure may propagate.
type Safe struct {
	inner       Store
	logger      *zap.Logger
	unavailable atomic.Bool
}

// NewSafe wraps inner. A nil logger defaults to zap.NewNop().
func NewSafe(inner Store, logger *zap.Logger) *Safe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Safe{inner: inner, logger: logger}
}

// Available reports whether the most recent call against the backing
// store succeeded. A fresh Safe is available until proven otherwise.
func (s *Safe) Available() bool {
	return !s.unavailable.Load()
}

// Load returns the current snapshot, or an empty one when the backing
// store cannot be reached.
func (s *Safe) Load(ctx context.Context) catalog.Snapshot {
	snap, err := s.inner.Load(ctx)
	if err != nil {
		s.unavailable.Store(true)
		s.logger.Warn("store load failed, returning empty snapshot", zap.Error(err))
		return catalog.Snapshot{}
	}
	s.unavailable.Store(false)
	if snap == nil {
		snap = catalog.Snapshot{}
	}
	return snap
}

// Save persists the snapshot, dropping the write when the backing store
// cannot be reached.
func (s *Safe) Save(ctx context.Context, snap catalog.Snapshot) {
	if err := s.inner.Save(ctx, snap); err != nil {
		s.unavailable.Store(true)
		s.logger.Warn("store save failed, write dropped", zap.Error(err))
		return
	}
	s.unavailable.Store(false)
}
