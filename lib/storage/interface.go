package storage

import (
	"fmt"
	"io"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplCedar Implementation = "cedar"
)

// Feature represents store features as bit flags
type Feature uint64

const (
	FeatureGet    Feature = 1 << iota // Support for Get operations
	FeatureSet                        // Support for Set operations
	FeatureRemove                     // Support for Remove operations
	FeatureHas                        // Support for Has operations
	FeatureSave                       // Support for Save operations
	FeatureLoad                       // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeatureGet:
		return "Get"
	case FeatureSet:
		return "Set"
	case FeatureRemove:
		return "Remove"
	case FeatureHas:
		return "Has"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

// StoreInfo provides standardized metadata about a store instance.
// It is not guaranteed that all fields are filled in or that the
// information is up-to-date!
type StoreInfo struct {
	EntryCount        int            `json:"entry_count"`
	SizeBytes         int            `json:"size_bytes"`
	StoreType         Implementation `json:"store_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Store Interface
// --------------------------------------------------------------------------

// StoreFactory is a function type that creates a new Store instance.
// This is used to abstract the creation of the store from the collections
// built on top of it.
type StoreFactory func() Store

// Store is the interface for a byte-addressed persistent key-value store.
// Collections address entries by opaque byte sequences (in practice
// fixed-width digests plus short metadata addresses) and never enumerate
// the key space; every operation touches exactly one address.
//
// Implementations can vary in their feature support, which can be queried
// with SupportsFeature.
type Store interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates the entry at the given address.
	// If the address already holds a value, the old value is overwritten.
	Set(addr []byte, value []byte) (err error)

	// Remove deletes the entry at the given address and returns the previous
	// value. The boolean return value indicates whether an entry existed.
	Remove(addr []byte) (prev []byte, loaded bool, err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value at an exact address.
	// The boolean return value indicates whether an entry was found.
	// The returned slice is a copy and safe to modify.
	Get(addr []byte) (value []byte, loaded bool, err error)

	// Has reports whether an entry exists at the given address without
	// copying its value.
	Has(addr []byte) (loaded bool, err error)

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists the current state of the store to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load restores the store state from the data provided by an io.Reader.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the store implementation supports the
	// specified feature. Multiple features can be checked at once using the
	// bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the store.
	GetInfo() (info StoreInfo)

	// Close releases all resources held by the store.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCUnsupportedOperation:
		errorCode = "UnsupportedOperation"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	case RetCCorruptedRecord:
		errorCode = "CorruptedRecord"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("StoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new store Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// IsCorrupt reports whether err is a store Error carrying the
// RetCCorruptedRecord code.
func IsCorrupt(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == RetCCorruptedRecord
	}
	return false
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the underlying store.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCCorruptedRecord                     // 4: A persisted record could not be decoded.
)
