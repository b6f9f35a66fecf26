package observable

import (
	"fmt"
	"reflect"
	"sort"
)

// tagName renames a struct field, or excludes it with "-".
const tagName = "state"

type fieldInfo struct {
	name  string
	index int // struct field index, -1 for map keys
	typ   reflect.Type
}

// schema describes the fields of a record type and how to reach them.
type schema struct {
	typ    reflect.Type
	isMap  bool
	fields map[string]fieldInfo
	names  []string
}

func newSchema(rt reflect.Type, initial reflect.Value) (*schema, error) {
	s := &schema{
		typ:    rt,
		fields: make(map[string]fieldInfo),
	}

	switch rt.Kind() {
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := sf.Name
			if tag, ok := sf.Tag.Lookup(tagName); ok {
				if tag == "-" {
					continue
				}
				if tag != "" {
					name = tag
				}
			}
			if _, dup := s.fields[name]; dup {
				return nil, fmt.Errorf("%w: duplicate field %q in %s", ErrInvalidInitialState, name, rt)
			}
			s.fields[name] = fieldInfo{name: name, index: i, typ: sf.Type}
		}

	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key must be a string, got %s", ErrInvalidInitialState, rt.Key())
		}
		if initial.IsNil() {
			return nil, fmt.Errorf("%w: nil map", ErrInvalidInitialState)
		}
		s.isMap = true
		iter := initial.MapRange()
		for iter.Next() {
			name := iter.Key().String()
			s.fields[name] = fieldInfo{name: name, index: -1, typ: rt.Elem()}
		}

	default:
		return nil, fmt.Errorf("%w: unsupported record kind %s", ErrInvalidInitialState, rt.Kind())
	}

	s.names = make([]string, 0, len(s.fields))
	for name := range s.fields {
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)

	return s, nil
}

// clone returns an addressable deep copy of a record. Slices, maps and
// arrays are copied element by element so the copy never shares storage with
// the source. Pointers are copied as pointers.
func (s *schema) clone(rec reflect.Value) reflect.Value {
	out := reflect.New(s.typ).Elem()
	out.Set(deepCopy(rec))
	return out
}

func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			// unexported fields keep the shallow copy made by Set
			if f := out.Field(i); f.CanSet() {
				f.Set(deepCopy(v.Field(i)))
			}
		}
		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(deepCopy(v.Elem()))
		return out

	default:
		return v
	}
}

func (s *schema) key(f fieldInfo) reflect.Value {
	return reflect.ValueOf(f.name).Convert(s.typ.Key())
}

func (s *schema) get(rec reflect.Value, f fieldInfo) reflect.Value {
	if s.isMap {
		return rec.MapIndex(s.key(f))
	}
	return rec.Field(f.index)
}

func (s *schema) set(rec reflect.Value, f fieldInfo, v reflect.Value) {
	if s.isMap {
		rec.SetMapIndex(s.key(f), v)
		return
	}
	rec.Field(f.index).Set(v)
}

// coerce checks that value can be stored in f. A nil value stores the zero
// value of nillable field types.
func (s *schema) coerce(f fieldInfo, value any) (reflect.Value, error) {
	if value == nil {
		switch f.typ.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(f.typ), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: field %q of type %s cannot hold nil", ErrFieldType, f.name, f.typ)
		}
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(f.typ) {
		return reflect.Value{}, fmt.Errorf("%w: field %q is %s, got %s", ErrFieldType, f.name, f.typ, rv.Type())
	}
	return rv, nil
}

// patchKey names the single entry of the document built by decodeField.
const patchKey = "v"

// decodeField converts a generically decoded patch value into a value of
// f's type by round-tripping it through codec, starting from current so
// partial documents merge into nested structs and maps.
//
// For interface-typed fields holding a value, the dynamic type of that value
// is tried first: a map[string]any field holding int(1) patched with 2 stays
// an int instead of becoming a float64. A null entry clears such a field.
func (s *schema) decodeField(codec Codec, f fieldInfo, current reflect.Value, value any) (reflect.Value, error) {
	doc, err := codec.Marshal(map[string]any{patchKey: value})
	if err != nil {
		return reflect.Value{}, err
	}

	if value != nil && f.typ.Kind() == reflect.Interface && current.IsValid() && !current.IsNil() {
		dyn := current.Elem()
		if v, err := decodeAs(codec, doc, dyn.Type(), deepCopy(dyn)); err == nil {
			return v, nil
		}
	}
	return decodeAs(codec, doc, f.typ, deepCopy(current))
}

func decodeAs(codec Codec, doc []byte, typ reflect.Type, seed reflect.Value) (reflect.Value, error) {
	holder := reflect.New(reflect.StructOf([]reflect.StructField{{
		Name: "V",
		Type: typ,
		Tag:  reflect.StructTag(`json:"` + patchKey + `" yaml:"` + patchKey + `" toml:"` + patchKey + `"`),
	}}))
	if seed.IsValid() {
		holder.Elem().Field(0).Set(seed)
	}
	if err := codec.Unmarshal(doc, holder.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return holder.Elem().Field(0), nil
}
