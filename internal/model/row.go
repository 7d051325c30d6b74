package model

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// Row is one record of an uploaded CSV export: header -> raw cell text.
// Keys keep the order in which they were first set, which for parsed
// files is the header order.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow returns an empty row sized for n columns.
func NewRow(n int) Row {
	return Row{keys: make([]string, 0, n), values: make(map[string]string, n)}
}

// Set assigns value to key. A repeated key keeps its first position.
func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the cell for key.
func (r Row) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len is the number of columns.
func (r Row) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping document key order. Non-string
// values are stored in their text form.
func (r *Row) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return errors.New("row must be a JSON object")
	}
	*r = NewRow(0)
	res.ForEach(func(key, value gjson.Result) bool {
		r.Set(key.String(), CellText(value))
		return true
	})
	return nil
}
