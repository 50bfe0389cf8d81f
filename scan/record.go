package scan

import (
	"bytes"
	"encoding/json"

	"golang.org/x/xerrors"
)

// Record is a single flat mapping of field name to scalar value.
// Package and vulnerability entries do not share a common shape across
// categories, so entries are decoded generically instead of into fixed
// structs. Field order from the source document is preserved so that
// unprojected output stays deterministic.
type Record struct {
	values map[string]any
	order  []string
}

func NewRecord() *Record {
	return &Record{values: map[string]any{}}
}

// Set stores a field value. A field set for the first time is appended
// to the record's field order.
func (r *Record) Set(name string, value any) {
	if _, ok := r.values[name]; !ok {
		r.order = append(r.order, name)
	}
	r.values[name] = value
}

func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Fields returns the field names in source order.
func (r *Record) Fields() []string {
	fields := make([]string, len(r.order))
	copy(fields, r.order)
	return fields
}

func (r *Record) Len() int {
	return len(r.order)
}

// UnmarshalJSON decodes a JSON object while keeping its key order,
// which encoding/json throws away when unmarshalling into a map.
func (r *Record) UnmarshalJSON(data []byte) error {
	r.values = map[string]any{}
	r.order = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return xerrors.New("record must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.Set(name, value)
	}
	return nil
}

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
