package codec

import (
	"bytes"
	"encoding/gob"
)

// GOB returns a codec serializing values of any type with encoding/gob.
// Gob handles arbitrary Go types including unexported-field-free structs,
// maps and slices, at the cost of a Go-only wire format.
func GOB[T any]() Codec[T] {
	return gobCodecImpl[T]{}
}

type gobCodecImpl[T any] struct{}

func (gobCodecImpl[T]) Marshal(v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodecImpl[T]) Unmarshal(data []byte) (T, error) {
	var v T
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v)
	return v, err
}
