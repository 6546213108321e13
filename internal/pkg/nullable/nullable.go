// Package nullable distinguishes an absent JSON field from an explicit null.
package nullable

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state value for partial updates: absent (Set false),
// null (Set true, Value nil) or a concrete value.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Of returns a Field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null returns a Field explicitly cleared.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// IsNull reports whether the field was sent as null.
func (f Field[T]) IsNull() bool {
	return f.Set && f.Value == nil
}

// UnmarshalJSON is only invoked for keys present in the payload.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}
