package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/game/inventory"
)

// Saver writes store snapshots to slots in the background. Only the newest pending
// snapshot is written; older versions are dropped.
type Saver struct {
	slots   Slots
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	pending *inventory.Snapshot
	saved   uint64

	writeMu sync.Mutex
	wake    chan struct{}
}

// NewSaver creates a Saver. A timeout of zero disables the per-write deadline.
//
// Precondition: slots and logger must be non-nil.
func NewSaver(slots Slots, timeout time.Duration, logger *zap.Logger) *Saver {
	return &Saver{
		slots:   slots,
		timeout: timeout,
		logger:  logger,
		wake:    make(chan struct{}, 1),
	}
}

// Notify queues snap for writing. It never blocks and is suitable as an
// inventory.Listener.
func (s *Saver) Notify(snap inventory.Snapshot) {
	s.mu.Lock()
	if snap.Version <= s.saved || (s.pending != nil && s.pending.Version >= snap.Version) {
		s.mu.Unlock()
		return
	}
	s.pending = &snap
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Saved returns the version of the last snapshot written successfully.
func (s *Saver) Saved() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// Run writes queued snapshots until ctx is done, then flushes whatever is still pending.
func (s *Saver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if err := s.Flush(context.WithoutCancel(ctx)); err != nil {
				s.logger.Error("final inventory save failed", zap.Error(err))
			}
			return
		case <-s.wake:
			if err := s.Flush(ctx); err != nil {
				s.logger.Warn("inventory save failed, retrying on next change", zap.Error(err))
			}
		}
	}
}

// Flush writes the pending snapshot, if any, before returning.
//
// Postcondition: on error the snapshot is dropped; the next change carries the full state.
func (s *Saver) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()
	if snap == nil {
		return nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := Write(ctx, s.slots, *snap); err != nil {
		return err
	}

	s.mu.Lock()
	if snap.Version > s.saved {
		s.saved = snap.Version
	}
	s.mu.Unlock()
	s.logger.Debug("inventory saved",
		zap.Uint64("version", snap.Version),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
