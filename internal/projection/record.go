package projection

import (
	"bytes"
	"encoding/json"
)

// Record is a read view: field values keyed by wire name, marshalled in declaration order.
type Record struct {
	keys   []string
	values map[string]any
}

// Get returns the value of a field and whether the field is part of the view.
func (r Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether the view carries the field.
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Keys returns the field names in order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// MarshalJSON writes the fields as an object in declaration order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
