package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/zoobzio/observable"
)

type benchRecord struct {
	Value int    `state:"value" json:"value"`
	Name  string `state:"name" json:"name"`
}

func BenchmarkState_Set(b *testing.B) {
	s, err := observable.New(benchRecord{})
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Set(ctx, "value", i)
	}
}

func BenchmarkState_SetObserved(b *testing.B) {
	s, err := observable.New(benchRecord{})
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	var sum int
	_ = s.Attach("value", func(v any) { sum += v.(int) })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Set(ctx, "value", i)
	}
}

func BenchmarkAccessor_Set(b *testing.B) {
	s, err := observable.New(benchRecord{})
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	value, err := observable.Field[int](s, "value")
	if err != nil {
		b.Fatalf("Field() error = %v", err)
	}
	ctx := context.Background()

	var sum int
	_ = value.Attach(func(v int) { sum += v })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = value.Set(ctx, i)
	}
}

func BenchmarkState_Apply(b *testing.B) {
	s, err := observable.New(benchRecord{})
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	docs := make([][]byte, 64)
	for i := range docs {
		docs[i] = []byte(fmt.Sprintf(`{"value": %d, "name": "bench"}`, i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Apply(ctx, docs[i%len(docs)])
	}
}
