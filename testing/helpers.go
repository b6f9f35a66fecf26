// Package testing provides test utilities and helpers for observable state testing.
package testing

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/observable"
)

// TestRecord is a standard record type for testing observable states.
// It implements observable.Validator.
type TestRecord struct {
	Count   int    `state:"count" yaml:"count" json:"count"`
	Label   string `state:"label" yaml:"label" json:"label"`
	Enabled bool   `state:"enabled" yaml:"enabled" json:"enabled"`
}

// Validate implements observable.Validator.
func (r TestRecord) Validate() error {
	if r.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

// NewTestState creates a State over initial and fails the test on error.
func NewTestState[T any](t *testing.T, initial T) *observable.State[T] {
	t.Helper()
	s, err := observable.New(initial)
	if err != nil {
		t.Fatalf("observable.New() error = %v", err)
	}
	return s
}

// Recorder captures the values passed to an observer. It is safe to use from
// a watch goroutine.
type Recorder[V any] struct {
	mu     sync.Mutex
	values []V
}

// Observe records v. Pass it to Accessor.Attach.
func (r *Recorder[V]) Observe(v V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

// ObserveAny records v after asserting it to V. Pass it to State.Attach.
func (r *Recorder[V]) ObserveAny(v any) {
	typed, _ := v.(V)
	r.Observe(typed)
}

// Values returns a copy of the recorded values, oldest first.
func (r *Recorder[V]) Values() []V {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]V, len(r.values))
	copy(out, r.values)
	return out
}

// Count returns the number of recorded calls.
func (r *Recorder[V]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Last returns the most recent value and true, or the zero value and false.
func (r *Recorder[V]) Last() (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		var zero V
		return zero, false
	}
	return r.values[len(r.values)-1], true
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitForStatus waits until the state reaches the expected watch status or
// timeout occurs.
func WaitForStatus[T any](t *testing.T, s *observable.State[T], expected observable.Status, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return s.Status() == expected
	})
}

// RequireValue fails the test immediately if field does not hold want.
func RequireValue[T any](t *testing.T, s *observable.State[T], field string, want any) {
	t.Helper()
	got, err := s.Get(field)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", field, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %s=%v, got %v", field, want, got)
	}
}

// RequireStatus fails the test immediately if the state is not in the
// expected watch status.
func RequireStatus[T any](t *testing.T, s *observable.State[T], expected observable.Status) {
	t.Helper()
	if got := s.Status(); got != expected {
		t.Fatalf("expected status %s, got %s", expected, got)
	}
}
