// Package codec provides serialization glue between typed collection APIs
// and the byte-oriented address store underneath them.
//
// The package focuses on:
//   - A minimal generic Codec interface (Marshal/Unmarshal)
//   - Fixed-width binary codecs for integer and string keys, optimized for
//     speed and a stable byte layout
//   - General-purpose JSON and GOB codecs for arbitrary value types
//
// The fixed-width integer codecs encode big-endian, so the byte order of two
// encoded keys equals their numeric order. The ordered-map layer compares
// decoded keys, not bytes, but a stable order-preserving layout makes
// persisted records independently inspectable.
//
// Choosing a codec is a per-collection decision: keys need a codec whose
// encoding is deterministic (the key bytes feed a digest that addresses the
// value store), values can use any codec. JSON is the interoperable choice,
// GOB handles arbitrary Go types, and the binary codecs are the fast path
// for simple types.
package codec
