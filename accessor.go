package observable

import (
	"context"
	"fmt"
	"reflect"
)

// Accessor is a typed handle to one field of a State.
type Accessor[T any, V any] struct {
	state *State[T]
	name  string
}

// Field returns a typed accessor for the named field. The field's type must
// be exactly V.
//
//	count, err := observable.Field[int](s, "count")
func Field[V any, T any](s *State[T], name string) (*Accessor[T, V], error) {
	f, ok := s.schema.fields[name]
	if !ok {
		return nil, unknownField(name)
	}
	if want := reflect.TypeFor[V](); f.typ != want {
		return nil, fmt.Errorf("%w: field %q is %s, not %s", ErrFieldType, name, f.typ, want)
	}
	return &Accessor[T, V]{state: s, name: name}, nil
}

// Name returns the field name.
func (a *Accessor[T, V]) Name() string {
	return a.name
}

// Get returns the current value of the field.
func (a *Accessor[T, V]) Get() V {
	raw, _ := a.state.Get(a.name) //nolint:errcheck // field resolved by Field
	v, _ := raw.(V)
	return v
}

// Set stores v and notifies the field's observer.
func (a *Accessor[T, V]) Set(ctx context.Context, v V) error {
	return a.state.Set(ctx, a.name, v)
}

// Attach registers fn as the field's observer, replacing any previous one.
func (a *Accessor[T, V]) Attach(fn func(V)) error {
	if fn == nil {
		return fmt.Errorf("%w: field %q", ErrNilObserver, a.name)
	}
	return a.state.Attach(a.name, func(raw any) {
		v, _ := raw.(V)
		fn(v)
	})
}
