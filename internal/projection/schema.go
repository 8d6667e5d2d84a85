package projection

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Mode decides which directions a field takes part in.
type Mode int

const (
	ReadWrite Mode = iota
	ReadOnly
	WriteOnly
)

func (m Mode) readable() bool { return m != WriteOnly }
func (m Mode) writable() bool { return m != ReadOnly }

// Field is one row of an entity's field table.
type Field[E any] struct {
	Name     string
	Mode     Mode
	Required bool
	Nullable bool
	Get      func(E) any
	Set      func(*E, json.RawMessage) error
}

// Schema is the field table of entity E.
type Schema[E any] struct {
	name   string
	fields []Field[E]
}

// NewSchema validates the field table. Wire names must be unique, readable fields need a
// getter and writable fields need a setter.
func NewSchema[E any](name string, fields ...Field[E]) (*Schema[E], error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%s: field without a name", name)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate field %q", name, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Mode.readable() && f.Get == nil {
			return nil, fmt.Errorf("%s: readable field %q has no getter", name, f.Name)
		}
		if f.Mode.writable() && f.Set == nil {
			return nil, fmt.Errorf("%s: writable field %q has no setter", name, f.Name)
		}
	}
	return &Schema[E]{name: name, fields: fields}, nil
}

// MustSchema is NewSchema for package-level tables; it panics on an invalid table.
func MustSchema[E any](name string, fields ...Field[E]) *Schema[E] {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Read projects e into its read view.
func (s *Schema[E]) Read(e E) Record {
	rec := Record{keys: make([]string, 0, len(s.fields)), values: make(map[string]any, len(s.fields))}
	for _, f := range s.fields {
		if !f.Mode.readable() {
			continue
		}
		rec.keys = append(rec.keys, f.Name)
		rec.values[f.Name] = f.Get(e)
	}
	return rec
}

// ReadMany projects a slice. A nil input yields an empty, non-nil slice so it encodes as [].
func (s *Schema[E]) ReadMany(items []E) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		out = append(out, s.Read(item))
	}
	return out
}

// Apply writes payload into target through the write view.
//
// Read-only and unknown keys are ignored. With partial set, absent required fields are not
// reported, which gives PATCH semantics. target is only modified when every field passes.
func (s *Schema[E]) Apply(target *E, payload map[string]json.RawMessage, partial bool) error {
	if target == nil {
		return fmt.Errorf("%s: nil target", s.name)
	}
	next := *target
	verr := &ValidationError{}
	for _, f := range s.fields {
		if !f.Mode.writable() {
			continue
		}
		raw, ok := payload[f.Name]
		if !ok {
			if f.Required && !partial {
				verr.Add(f.Name, MsgRequired)
			}
			continue
		}
		if isNull(raw) && !f.Nullable {
			verr.Add(f.Name, MsgNull)
			continue
		}
		if err := f.Set(&next, raw); err != nil {
			verr.Add(f.Name, err.Error())
		}
	}
	if verr.HasErrors() {
		return verr
	}
	*target = next
	return nil
}

// Decode parses body as a JSON object and applies it. Any other JSON value is rejected as a
// non-field error.
func (s *Schema[E]) Decode(body []byte, target *E, partial bool) error {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		verr := &ValidationError{}
		verr.Add(NonFieldErrors, MsgNotObject)
		return verr
	}
	return s.Apply(target, payload, partial)
}

// Nested embeds the read view of a related entity as a read-only field.
func Nested[E, N any](name string, inner *Schema[N], get func(E) N) Field[E] {
	return Field[E]{
		Name: name,
		Mode: ReadOnly,
		Get: func(e E) any {
			return inner.Read(get(e))
		},
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
