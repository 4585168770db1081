package codec

import (
	"bytes"
	"testing"
)

func TestStringRoundTrip(t *testing.T) {
	c := String()

	for _, s := range []string{"", "a", "hello world", "späße", "\x00binary\xff"} {
		data, err := c.Marshal(s)
		if err != nil {
			t.Fatalf("Marshal(%q) failed: %v", s, err)
		}
		got, err := c.Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal(%q) failed: %v", s, err)
		}
		if got != s {
			t.Errorf("Expected %q, got %q", s, got)
		}
	}
}

func TestBytesCopies(t *testing.T) {
	c := Bytes()

	in := []byte("mutable")
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	in[0] = 'X'
	if bytes.Equal(data, in) {
		t.Errorf("Marshal should copy its input")
	}
}

func TestUint32OrderPreserving(t *testing.T) {
	c := Uint32()

	values := []uint32{0, 1, 41, 42, 1 << 16, 1<<32 - 1}
	var prev []byte
	for _, v := range values {
		data, err := c.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%d) failed: %v", v, err)
		}
		if len(data) != 4 {
			t.Fatalf("Expected 4 bytes, got %d", len(data))
		}
		if prev != nil && bytes.Compare(prev, data) >= 0 {
			t.Errorf("Encoding of %d is not byte-ordered after its predecessor", v)
		}
		prev = data

		got, err := c.Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if got != v {
			t.Errorf("Expected %d, got %d", v, got)
		}
	}

	if _, err := c.Unmarshal([]byte{1, 2, 3}); err == nil {
		t.Errorf("Expected error for truncated input")
	}
}

func TestInt64OrderPreserving(t *testing.T) {
	c := Int64()

	values := []int64{-1 << 62, -100, -1, 0, 1, 100, 1 << 62}
	var prev []byte
	for _, v := range values {
		data, err := c.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%d) failed: %v", v, err)
		}
		if prev != nil && bytes.Compare(prev, data) >= 0 {
			t.Errorf("Encoding of %d is not byte-ordered after its predecessor", v)
		}
		prev = data

		got, err := c.Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if got != v {
			t.Errorf("Expected %d, got %d", v, got)
		}
	}
}

type account struct {
	Owner   string
	Balance uint64
	Tags    []string
}

func TestJSONRoundTrip(t *testing.T) {
	c := JSON[account]()

	in := account{Owner: "alice", Balance: 1000, Tags: []string{"vip", "beta"}}
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := c.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Owner != in.Owner || got.Balance != in.Balance || len(got.Tags) != 2 {
		t.Errorf("Expected %+v, got %+v", in, got)
	}

	if _, err := c.Unmarshal([]byte("{broken")); err == nil {
		t.Errorf("Expected error for malformed JSON")
	}
}

func TestGOBRoundTrip(t *testing.T) {
	c := GOB[account]()

	in := account{Owner: "bob", Balance: 7}
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := c.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Owner != in.Owner || got.Balance != in.Balance {
		t.Errorf("Expected %+v, got %+v", in, got)
	}
}
