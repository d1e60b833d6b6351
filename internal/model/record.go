package model

import (
	"bytes"
	"encoding/json"
)

// Record maps column labels to values and remembers insertion order
type Record struct {
	labels []string
	values map[string]string
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// RecordOf builds a record from alternating label, value pairs
func RecordOf(pairs ...string) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set stores value under label. Re-setting a label keeps its position.
func (r *Record) Set(label, value string) {
	if _, ok := r.values[label]; !ok {
		r.labels = append(r.labels, label)
	}
	r.values[label] = value
}

// Get returns the value for label, or "" when absent
func (r *Record) Get(label string) string {
	return r.values[label]
}

// Lookup returns the value for label and whether it exists
func (r *Record) Lookup(label string) (string, bool) {
	v, ok := r.values[label]
	return v, ok
}

// Has reports whether label is present
func (r *Record) Has(label string) bool {
	_, ok := r.values[label]
	return ok
}

// Labels returns the labels in insertion order
func (r *Record) Labels() []string {
	return append([]string(nil), r.labels...)
}

// Len returns the number of labels
func (r *Record) Len() int {
	return len(r.labels)
}

// Map returns a copy of the label to value mapping
func (r *Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the record as an object with keys in insertion order
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range r.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[label])
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

// UnmarshalJSON reads an object of string values, keeping key order
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	r.labels = nil
	r.values = make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, _ := tok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.Set(label, value)
	}
	_, err := dec.Token()
	return err
}
