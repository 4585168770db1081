package codec

import "encoding/json"

// JSON returns a codec serializing values of any type as JSON.
// This is the interoperable default for value payloads.
func JSON[T any]() Codec[T] {
	return jsonCodecImpl[T]{}
}

type jsonCodecImpl[T any] struct{}

func (jsonCodecImpl[T]) Marshal(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodecImpl[T]) Unmarshal(data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}
