package features

import (
	"bytes"
	"encoding/json"
	"fmt"

	"aidetect/pkg/models"
)

// Vector is a 0/1 value for every label of a schema. The key set never
// changes after construction.
type Vector struct {
	schema *Schema
	values []uint8
}

// NewVector returns an all-zero vector over schema.
func NewVector(schema *Schema) Vector {
	return Vector{schema: schema, values: make([]uint8, schema.Len())}
}

// Schema returns the vector's schema.
func (v Vector) Schema() *Schema {
	return v.schema
}

// Set flips label to 1. Unknown labels are ignored and report false.
func (v Vector) Set(label string) bool {
	i, ok := v.schema.index[label]
	if !ok {
		return false
	}
	v.values[i] = 1
	return true
}

// Get returns the value for label and whether it exists.
func (v Vector) Get(label string) (int, bool) {
	i, ok := v.schema.index[label]
	if !ok {
		return 0, false
	}
	return int(v.values[i]), true
}

// Ones returns the labels set to 1, in schema order.
func (v Vector) Ones() []string {
	var out []string
	for i, val := range v.values {
		if val == 1 {
			out = append(out, v.schema.keys[i])
		}
	}
	return out
}

// Floats returns the values as a dense float32 slice, for similarity search.
func (v Vector) Floats() []float32 {
	out := make([]float32, len(v.values))
	for i, val := range v.values {
		out[i] = float32(val)
	}
	return out
}

// Map returns the values keyed by label.
func (v Vector) Map() map[string]int {
	out := make(map[string]int, len(v.values))
	for i, val := range v.values {
		out[v.schema.keys[i]] = int(val)
	}
	return out
}

// MarshalJSON encodes the vector as an object whose keys follow schema order.
func (v Vector) MarshalJSON() ([]byte, error) {
	if v.schema == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range v.schema.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("failed to encode label %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteByte('0' + v.values[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode maps a form onto a fresh vector. Single-choice answers and symptoms
// are matched against the schema by equality; anything unmatched is dropped.
func Encode(schema *Schema, form models.FormState) Vector {
	v := NewVector(schema)
	for _, value := range form.Values() {
		if value != "" {
			v.Set(value)
		}
	}
	for _, symptom := range form.Symptoms {
		v.Set(symptom)
	}
	return v
}
