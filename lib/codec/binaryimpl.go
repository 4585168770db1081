package codec

import (
	"encoding/binary"
	"fmt"
)

// --------------------------------------------------------------------------
// Fixed-width binary codecs
// --------------------------------------------------------------------------

// String returns a codec for string values using the raw UTF-8 bytes.
// The encoding is deterministic and order-preserving.
func String() Codec[string] {
	return stringCodecImpl{}
}

type stringCodecImpl struct{}

func (stringCodecImpl) Marshal(v string) ([]byte, error) {
	return []byte(v), nil
}

func (stringCodecImpl) Unmarshal(data []byte) (string, error) {
	return string(data), nil
}

// Bytes returns a codec for raw byte slices. Marshal copies the input so the
// caller can reuse its buffer.
func Bytes() Codec[[]byte] {
	return bytesCodecImpl{}
}

type bytesCodecImpl struct{}

func (bytesCodecImpl) Marshal(v []byte) ([]byte, error) {
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (bytesCodecImpl) Unmarshal(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Uint32 returns a codec encoding uint32 values as 4 big-endian bytes.
func Uint32() Codec[uint32] {
	return uint32CodecImpl{}
}

type uint32CodecImpl struct{}

func (uint32CodecImpl) Marshal(v uint32) ([]byte, error) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf, nil
}

func (uint32CodecImpl) Unmarshal(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("uint32 codec: expected 4 bytes, got %d", len(data))
	}
	return binary.BigEndian.Uint32(data), nil
}

// Uint64 returns a codec encoding uint64 values as 8 big-endian bytes.
func Uint64() Codec[uint64] {
	return uint64CodecImpl{}
}

type uint64CodecImpl struct{}

func (uint64CodecImpl) Marshal(v uint64) ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf, nil
}

func (uint64CodecImpl) Unmarshal(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("uint64 codec: expected 8 bytes, got %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// Int64 returns a codec encoding int64 values as 8 big-endian bytes with the
// sign bit flipped, so the byte order of two encoded values equals their
// numeric order.
func Int64() Codec[int64] {
	return int64CodecImpl{}
}

type int64CodecImpl struct{}

func (int64CodecImpl) Marshal(v int64) ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v)^(1<<63))
	return buf, nil
}

func (int64CodecImpl) Unmarshal(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("int64 codec: expected 8 bytes, got %d", len(data))
	}
	return int64(binary.BigEndian.Uint64(data) ^ (1 << 63)), nil
}
