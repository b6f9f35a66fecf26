package observable

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Watcher observes a source and emits raw patch documents on a channel.
// Implementations must emit the current value immediately upon Watch() being
// called so the State can sync on startup.
type Watcher interface {
	// Watch begins observing the source and returns a channel that emits
	// raw bytes when changes occur. The channel is closed when the context
	// is canceled or an unrecoverable error occurs.
	Watch(ctx context.Context) (<-chan []byte, error)
}

// forward sends doc on out unless ctx ends first.
func forward(ctx context.Context, out chan<- []byte, doc []byte) bool {
	select {
	case out <- doc:
		return true
	case <-ctx.Done():
		return false
	}
}

// Status returns the watch status of the State.
func (s *State[T]) Status() Status {
	return Status(s.status.Load())
}

// LastError returns the error of the last failed patch from the watched
// source, or nil if the last patch applied.
func (s *State[T]) LastError() error {
	ptr := s.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// Watch applies patches emitted by w. It blocks until the first patch is
// applied or rejected, then keeps applying patches asynchronously until ctx
// is canceled or the watcher closes its channel. Bursts of patches are
// debounced and only the latest is applied.
//
// If the first patch fails, Watch returns the error but keeps watching in
// the background. In sync mode, Watch only processes the first patch; use
// Process() for the rest.
//
// Watch can only be called once. Subsequent calls return ErrAlreadyWatching,
// unless the earlier watcher failed to start or closed without emitting.
func (s *State[T]) Watch(ctx context.Context, w Watcher) error {
	s.watchMu.Lock()
	if s.watching {
		s.watchMu.Unlock()
		return ErrAlreadyWatching
	}
	s.watching = true
	s.watchMu.Unlock()

	capitan.Emit(ctx, WatchStarted,
		KeyInstance.Field(s.id),
		KeyDebounce.Field(s.debounce),
		KeyWatcherType.Field(fmt.Sprintf("%T", w)),
	)

	changes, err := w.Watch(ctx)
	if err != nil {
		s.release()
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	startupCtx := ctx
	if s.startupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = s.clock.WithTimeout(ctx, s.startupTimeout)
		defer cancel()
	}

	var initialErr error
	select {
	case <-startupCtx.Done():
		if s.startupTimeout > 0 && startupCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("startup timeout: watcher did not emit initial value within %v", s.startupTimeout)
		}
		return startupCtx.Err()
	case raw, ok := <-changes:
		if !ok {
			s.release()
			return fmt.Errorf("watcher closed before emitting initial value")
		}
		initialErr = s.sync(ctx, raw)
	}

	if s.syncMode {
		s.changes = changes
		return initialErr
	}

	go s.watch(ctx, changes)

	return initialErr
}

// release lets Watch be called again after a watcher that never started.
func (s *State[T]) release() {
	s.watchMu.Lock()
	s.watching = false
	s.watchMu.Unlock()
}

// Process applies the next patch from the watcher. It is only available in
// sync mode. Returns false if no patch is pending or the channel is closed.
func (s *State[T]) Process(ctx context.Context) bool {
	if !s.syncMode || s.changes == nil {
		return false
	}

	select {
	case raw, ok := <-s.changes:
		if !ok {
			return false
		}
		_ = s.sync(ctx, raw) //nolint:errcheck // Errors stored via LastError
		return true
	default:
		return false
	}
}

// sync applies a patch from the watched source and tracks the outcome.
func (s *State[T]) sync(ctx context.Context, raw []byte) error {
	old := s.Status()
	if err := s.Apply(ctx, raw); err != nil {
		e := err
		s.lastError.Store(&e)
		next := StatusDegraded
		if old == StatusIdle || old == StatusUnsynced {
			next = StatusUnsynced
		}
		s.transition(ctx, old, next)
		return err
	}
	s.lastError.Store(nil)
	s.transition(ctx, old, StatusSynced)
	return nil
}

// transition updates the status and emits a signal if it changed.
func (s *State[T]) transition(ctx context.Context, from, to Status) {
	if from == to {
		return
	}
	s.status.Store(int32(to))
	capitan.Emit(ctx, WatchStatusChanged,
		KeyInstance.Field(s.id),
		KeyOldStatus.Field(from.String()),
		KeyNewStatus.Field(to.String()),
	)
	if s.metrics != nil {
		s.metrics.OnStatusChange(from, to)
	}
}

// watch applies patches from the watcher channel with debouncing.
func (s *State[T]) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		final := s.Status()
		capitan.Emit(ctx, WatchStopped,
			KeyInstance.Field(s.id),
			KeyStatus.Field(final.String()),
		)
		if s.onStop != nil {
			s.onStop(final)
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = s.sync(ctx, pending) //nolint:errcheck // Errors stored via LastError
				}
				return
			}

			pending = raw
			hasPending = true

			if timer == nil {
				timer = s.clock.NewTimer(s.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(s.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = s.sync(ctx, pending) //nolint:errcheck // Errors stored via LastError
				hasPending = false
			}
		}
	}
}
