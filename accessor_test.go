package observable

import (
	"context"
	"errors"
	"testing"
)

func TestField_GetSet(t *testing.T) {
	ctx := context.Background()
	s, _ := New(Counter{Count: 0})

	count, err := Field[int](s, "count")
	if err != nil {
		t.Fatalf("Field() error = %v", err)
	}
	if count.Name() != "count" {
		t.Errorf("expected name 'count', got %q", count.Name())
	}
	if count.Get() != 0 {
		t.Errorf("expected 0, got %d", count.Get())
	}

	if err := count.Set(ctx, count.Get()+10); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if count.Get() != 10 {
		t.Errorf("expected 10, got %d", count.Get())
	}
}

func TestField_AttachTyped(t *testing.T) {
	ctx := context.Background()
	s, _ := New(Counter{})

	count, _ := Field[int](s, "count")

	var calls []int
	if err := count.Attach(func(n int) { calls = append(calls, n) }); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	_ = count.Set(ctx, 10)
	_ = s.Set(ctx, "count", 11)

	if len(calls) != 2 || calls[0] != 10 || calls[1] != 11 {
		t.Errorf("expected [10 11], got %v", calls)
	}
}

func TestField_AttachReplacesUntypedObserver(t *testing.T) {
	ctx := context.Background()
	s, _ := New(Counter{})

	untyped := &recorder{}
	_ = s.Attach("count", untyped.observe)

	count, _ := Field[int](s, "count")
	var typed []int
	_ = count.Attach(func(n int) { typed = append(typed, n) })

	_ = count.Set(ctx, 1)

	if len(untyped.calls) != 0 {
		t.Errorf("expected replaced observer not to fire, got %d calls", len(untyped.calls))
	}
	if len(typed) != 1 {
		t.Errorf("expected typed observer to fire once, got %d", len(typed))
	}
}

func TestField_TypeMismatch(t *testing.T) {
	s, _ := New(Counter{})

	if _, err := Field[string](s, "count"); !errors.Is(err, ErrFieldType) {
		t.Errorf("expected ErrFieldType, got %v", err)
	}
	if _, err := Field[int64](s, "count"); !errors.Is(err, ErrFieldType) {
		t.Errorf("expected ErrFieldType for int64, got %v", err)
	}
}

func TestField_UnknownField(t *testing.T) {
	s, _ := New(Counter{})

	if _, err := Field[int](s, "missing"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestField_NilObserver(t *testing.T) {
	s, _ := New(Counter{})
	count, _ := Field[int](s, "count")

	if err := count.Attach(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("expected ErrNilObserver, got %v", err)
	}
}

func TestField_InterfaceValueNil(t *testing.T) {
	ctx := context.Background()
	s, _ := New(map[string]any{"value": "set"})

	value, err := Field[any](s, "value")
	if err != nil {
		t.Fatalf("Field() error = %v", err)
	}

	var seen []any
	_ = value.Attach(func(v any) { seen = append(seen, v) })

	if err := value.Set(ctx, nil); err != nil {
		t.Fatalf("Set(nil) error = %v", err)
	}
	if value.Get() != nil {
		t.Errorf("expected nil, got %v", value.Get())
	}
	if len(seen) != 1 || seen[0] != nil {
		t.Errorf("expected one nil notification, got %v", seen)
	}
}
