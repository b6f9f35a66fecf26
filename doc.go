// Package observable wraps a flat record and notifies a per-field observer
// every time that field is written.
//
// The core type is State, a generic container over a struct or a
// map[string]V. Fields are read and written by name, and each field may carry
// one observer that is invoked synchronously with the new value before the
// write returns.
//
// # Fields
//
// For a struct record, every exported field is a state field. The `state`
// struct tag renames a field, and `state:"-"` excludes it:
//
//	type Counter struct {
//	    Count int    `state:"count"`
//	    Label string `state:"label"`
//	    cache []int
//	}
//
// For a map record, the keys of the initial map are the fields. The key set
// is fixed once the State is constructed.
//
// # Observers
//
// Attach registers the observer for one field. Attaching again to the same
// field replaces the previous observer. Observers fire on every write,
// including writes of an equal value, and run on the writer's goroutine
// after the value is stored.
//
//	s, err := observable.New(Counter{})
//	if err != nil {
//	    return err
//	}
//	_ = s.Attach("count", func(v any) {
//	    log.Printf("count is now %d", v)
//	})
//	_ = s.Set(ctx, "count", 10)
//
// Field returns a typed accessor for a single field:
//
//	count, err := observable.Field[int](s, "count")
//	if err != nil {
//	    return err
//	}
//	count.Attach(func(n int) { log.Printf("count is now %d", n) })
//	count.Set(ctx, count.Get()+1)
//
// # Patches and Watchers
//
// Apply decodes a document keyed by field name, validates the resulting
// record, and writes every field whose value changed. Watch feeds a
// Watcher's byte stream into Apply, so a file or channel can drive the state:
//
//	path := "/etc/app/state.yaml"
//	s.Codec(observable.CodecForPath(path)).Debounce(200 * time.Millisecond)
//	if err := s.Watch(ctx, observable.NewFileWatcher(path)); err != nil {
//	    log.Printf("initial patch failed: %v", err)
//	}
//
// A failed patch leaves the record untouched and moves the watch status to
// degraded until a later patch applies.
//
// # Signals
//
// Every operation emits a capitan signal (see signals.go) carrying the field
// name, instance ID and related keys, so the state can be audited without
// attaching observers.
package observable
