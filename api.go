package observable

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

// DefaultDebounce is the default debounce duration for watched sources.
const DefaultDebounce = 100 * time.Millisecond

// Validator may be implemented by a record type. Apply calls Validate on the
// decoded candidate before committing it.
type Validator interface {
	Validate() error
}

// State owns a flat record and notifies one observer per field whenever that
// field is written.
//
// The record is never aliased: New copies the initial value, Snapshot returns
// a copy, and writes go through Set, Apply or a typed Accessor.
type State[T any] struct {
	id             string
	schema         *schema
	clock          clockz.Clock
	codec          Codec
	metrics        MetricsProvider
	debounce       time.Duration
	startupTimeout time.Duration
	syncMode       bool
	onStop         func(Status)
	pipeline       pipz.Chainable[*patch[T]]

	mu        sync.Mutex
	record    reflect.Value
	observers map[string]func(any)
	updated   map[string]time.Time

	status    atomic.Int32
	lastError atomic.Pointer[error]

	watchMu  sync.Mutex
	watching bool

	// For sync mode: channel to receive patches
	changes <-chan []byte
}

// New creates a State holding a copy of initial.
//
// T must be a struct or a map keyed by strings. For a struct, each exported
// field is a state field named by its `state` tag or its Go name. For a map,
// the keys of initial are the fields and no keys can be added later.
//
// Example:
//
//	type Counter struct {
//	    Count int `state:"count"`
//	}
//
//	s, err := observable.New(Counter{Count: 0})
//	if err != nil {
//	    return err
//	}
//	_ = s.Attach("count", func(v any) { fmt.Println("count:", v) })
//	_ = s.Set(ctx, "count", 10) // prints "count: 10"
func New[T any](initial T) (*State[T], error) {
	rt := reflect.TypeFor[T]()
	rv := reflect.ValueOf(&initial).Elem()

	sch, err := newSchema(rt, rv)
	if err != nil {
		return nil, err
	}

	s := &State[T]{
		id:        uuid.NewString(),
		schema:    sch,
		clock:     clockz.RealClock,
		codec:     JSONCodec{},
		debounce:  DefaultDebounce,
		record:    sch.clone(rv),
		observers: make(map[string]func(any)),
		updated:   make(map[string]time.Time),
	}
	s.pipeline = s.buildPipeline()
	s.status.Store(int32(StatusIdle))

	capitan.Emit(context.Background(), StateCreated,
		KeyInstance.Field(s.id),
		KeyType.Field(rt.String()),
		KeyFields.Field(len(sch.names)),
	)

	return s, nil
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Clock sets the clock used for write timestamps, debouncing and the startup
// timeout. Use this with clockz.FakeClock for deterministic tests.
// Must be called before the State is shared.
func (s *State[T]) Clock(clock clockz.Clock) *State[T] {
	s.clock = clock
	return s
}

// Codec sets the codec used by Apply and Watch. Default: JSONCodec.
func (s *State[T]) Codec(codec Codec) *State[T] {
	s.codec = codec
	return s
}

// Metrics sets a metrics provider for observability integration.
func (s *State[T]) Metrics(provider MetricsProvider) *State[T] {
	s.metrics = provider
	return s
}

// Debounce sets the debounce duration for watched sources. Patches arriving
// within this duration are coalesced and only the latest is applied.
// Default: 100ms. Must be called before Watch().
func (s *State[T]) Debounce(d time.Duration) *State[T] {
	s.debounce = d
	return s
}

// SyncMode makes Watch process only the initial patch and return without
// starting a goroutine. Use Process() to apply subsequent patches.
// Must be called before Watch().
func (s *State[T]) SyncMode() *State[T] {
	s.syncMode = true
	return s
}

// StartupTimeout bounds how long Watch waits for the watcher's first value.
// Default: no timeout. Must be called before Watch().
func (s *State[T]) StartupTimeout(d time.Duration) *State[T] {
	s.startupTimeout = d
	return s
}

// OnStop sets a callback invoked with the final status when the watch loop
// exits. Must be called before Watch().
func (s *State[T]) OnStop(fn func(Status)) *State[T] {
	s.onStop = fn
	return s
}

// -----------------------------------------------------------------------------
// Fields
// -----------------------------------------------------------------------------

// ID returns the unique identifier carried by this State's signals.
func (s *State[T]) ID() string {
	return s.id
}

// Fields returns the field names of the record, sorted.
func (s *State[T]) Fields() []string {
	out := make([]string, len(s.schema.names))
	copy(out, s.schema.names)
	return out
}

// Get returns the current value of a field.
func (s *State[T]) Get(field string) (any, error) {
	f, ok := s.schema.fields[field]
	if !ok {
		return nil, unknownField(field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema.get(s.record, f).Interface(), nil
}

// Set stores value in field, then invokes the field's observer with the
// value before returning. Observers fire on every write, including writes of
// an equal value.
//
// Set fails with ErrUnknownField for names outside the record and with
// ErrFieldType when value is not assignable to the field.
func (s *State[T]) Set(ctx context.Context, field string, value any) error {
	f, ok := s.schema.fields[field]
	if !ok {
		return unknownField(field)
	}
	rv, err := s.schema.coerce(f, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.schema.set(s.record, f, rv)
	s.updated[field] = s.clock.Now()
	observer := s.observers[field]
	s.mu.Unlock()

	s.notify(ctx, field, rv.Interface(), observer)
	return nil
}

// Attach registers fn as the observer of field, replacing any observer
// previously attached to it.
func (s *State[T]) Attach(field string, fn func(any)) error {
	if _, ok := s.schema.fields[field]; !ok {
		return unknownField(field)
	}
	if fn == nil {
		return fmt.Errorf("%w: field %q", ErrNilObserver, field)
	}

	s.mu.Lock()
	_, replaced := s.observers[field]
	s.observers[field] = fn
	s.mu.Unlock()

	signal := ObserverAttached
	if replaced {
		signal = ObserverReplaced
	}
	capitan.Emit(context.Background(), signal,
		KeyInstance.Field(s.id),
		KeyField.Field(field),
	)
	return nil
}

// Observed reports whether field has an observer attached.
func (s *State[T]) Observed(field string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.observers[field]
	return ok
}

// UpdatedAt returns the time of the last write to field, or false if the
// field has not been written since construction.
func (s *State[T]) UpdatedAt(field string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.updated[field]
	return at, ok
}

// Snapshot returns a copy of the current record.
func (s *State[T]) Snapshot() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema.clone(s.record).Interface().(T)
}

// notify reports a stored write. It must be called without holding mu so the
// observer may read or write this State.
func (s *State[T]) notify(ctx context.Context, field string, value any, observer func(any)) {
	capitan.Emit(ctx, FieldChanged,
		KeyInstance.Field(s.id),
		KeyField.Field(field),
		KeyValue.Field(fmt.Sprint(value)),
	)
	if s.metrics != nil {
		s.metrics.OnFieldChanged(field)
	}

	if observer == nil {
		return
	}
	observer(value)
	if s.metrics != nil {
		s.metrics.OnObserverNotified(field)
	}
}
