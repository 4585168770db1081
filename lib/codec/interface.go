package codec

// Codec is the interface for all value serializers used by the collection
// types. A codec converts a typed value into the byte representation stored
// in the underlying address store, and back.
type Codec[T any] interface {
	// Marshal serializes a value into a byte array.
	// It returns the serialized byte array and an error if any.
	Marshal(v T) ([]byte, error)
	// Unmarshal deserializes a byte array into a value.
	// It returns the decoded value and an error if any.
	Unmarshal(data []byte) (T, error)
}
