package types

import "errors"

// Sentinel errors for common error conditions.
var (
	// ErrNotFound is returned when a requested record is not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig is returned when configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrProviderNotAvailable is returned when a provider is not available.
	ErrProviderNotAvailable = errors.New("provider not available")

	// ErrDimensionMismatch is returned when vector dimensions disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmbeddingFailed is returned when embedding generation fails.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrSearchFailed is returned when search fails.
	ErrSearchFailed = errors.New("search failed")

	// ErrStoreFailed is returned when a store operation fails.
	ErrStoreFailed = errors.New("store operation failed")

	// ErrDecodeFailed is returned when persisted data cannot be decoded.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrDuplicate is returned when inserting a record that already exists.
	ErrDuplicate = errors.New("duplicate record")

	// ErrCancelled is returned when an operation is cancelled.
	ErrCancelled = errors.New("operation cancelled")
)
