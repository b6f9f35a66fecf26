package observable

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// validate is the shared validator instance for struct tag checks.
var validate = validator.New()

// Stage names of the patch pipeline. A failing stage's name is reported as
// the `stage` key of PatchFailed and to MetricsProvider.OnPatchFailed.
const (
	patchPipeline pipz.Name = "patch"
	decodeStage   pipz.Name = "decode"
	validateStage pipz.Name = "validate"
	commitStage   pipz.Name = "commit"
)

// patch carries one document through the pipeline.
type patch[T any] struct {
	previous T // record when the patch started
	current  T // candidate written by decode
	raw      []byte
	changes  []change
}

// change is a committed field write waiting for notification.
type change struct {
	field    string
	value    any
	observer func(any)
}

func (s *State[T]) buildPipeline() pipz.Chainable[*patch[T]] {
	return pipz.NewSequence[*patch[T]](patchPipeline,
		pipz.Apply(decodeStage, s.decodePatch),
		pipz.Apply(validateStage, s.validatePatch),
		pipz.Effect(commitStage, s.commitPatch),
	)
}

// Apply decodes raw with the configured codec and writes every field whose
// value changed.
//
// Top-level keys of the document are field names as reported by Fields. A
// key outside the record fails with ErrUnknownField; fields absent from the
// document keep their values. Struct records are checked against their
// `validate` tags, then against Validate() when the record implements
// Validator. If any stage fails, the record is left untouched and no
// observer fires.
//
// Changed fields are committed together, then their observers are invoked in
// field-name order before Apply returns.
func (s *State[T]) Apply(ctx context.Context, raw []byte) error {
	start := s.clock.Now()

	s.mu.Lock()
	p := &patch[T]{
		previous: s.schema.clone(s.record).Interface().(T),
		current:  s.schema.clone(s.record).Interface().(T),
		raw:      raw,
	}
	s.mu.Unlock()

	p, err := s.pipeline.Process(ctx, p)
	if err != nil {
		stage, cause := patchFailure[T](err)
		capitan.Emit(ctx, PatchFailed,
			KeyInstance.Field(s.id),
			KeyStage.Field(stage),
			KeyError.Field(cause.Error()),
		)
		if s.metrics != nil {
			s.metrics.OnPatchFailed(stage, s.clock.Since(start))
		}
		return fmt.Errorf("%s failed: %w", stage, cause)
	}

	capitan.Emit(ctx, PatchApplied,
		KeyInstance.Field(s.id),
		KeyFields.Field(len(p.changes)),
	)
	if s.metrics != nil {
		s.metrics.OnPatchApplied(len(p.changes), s.clock.Since(start))
	}

	for _, c := range p.changes {
		s.notify(ctx, c.field, c.value, c.observer)
	}
	return nil
}

// decodePatch writes each entry of the document into the matching field of
// the candidate. Keys are visited in sorted order so the reported error is
// stable.
func (s *State[T]) decodePatch(_ context.Context, p *patch[T]) (*patch[T], error) {
	var doc map[string]any
	if err := s.codec.Unmarshal(p.raw, &doc); err != nil {
		return p, err
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	candidate := reflect.ValueOf(&p.current).Elem()
	for _, k := range keys {
		f, ok := s.schema.fields[k]
		if !ok {
			return p, unknownField(k)
		}
		v, err := s.schema.decodeField(s.codec, f, s.schema.get(candidate, f), doc[k])
		if err != nil {
			return p, fmt.Errorf("field %q: %w", k, err)
		}
		s.schema.set(candidate, f, v)
	}
	return p, nil
}

// validatePatch checks the candidate record.
func (s *State[T]) validatePatch(_ context.Context, p *patch[T]) (*patch[T], error) {
	candidate := reflect.ValueOf(&p.current).Elem()
	if !s.schema.isMap {
		if err := validate.Struct(candidate.Interface()); err != nil {
			return p, err
		}
	}
	if v, ok := candidate.Interface().(Validator); ok {
		return p, v.Validate()
	}
	if v, ok := candidate.Addr().Interface().(Validator); ok {
		return p, v.Validate()
	}
	return p, nil
}

// commitPatch writes the fields that differ between the record the patch
// started from and the candidate. Fields the patch left alone are not
// written, so a Set racing with the pipeline keeps its value.
func (s *State[T]) commitPatch(_ context.Context, p *patch[T]) error {
	prev := reflect.ValueOf(&p.previous).Elem()
	next := reflect.ValueOf(&p.current).Elem()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for _, name := range s.schema.names {
		f := s.schema.fields[name]
		value := s.schema.get(next, f)
		if reflect.DeepEqual(s.schema.get(prev, f).Interface(), value.Interface()) {
			continue
		}
		s.schema.set(s.record, f, value)
		s.updated[name] = now
		p.changes = append(p.changes, change{field: name, value: value.Interface(), observer: s.observers[name]})
	}
	return nil
}

// patchFailure extracts the failing stage and the underlying error from a
// pipeline error.
func patchFailure[T any](err error) (string, error) {
	var perr *pipz.Error[*patch[T]]
	if errors.As(err, &perr) && len(perr.Path) > 0 {
		return string(perr.Path[len(perr.Path)-1]), perr.Err
	}
	return string(patchPipeline), err
}
