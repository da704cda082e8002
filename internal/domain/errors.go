// Package domain holds error values shared across domain and application layers.
package domain

import "errors"

// Sentinel errors. Services classify failures at the point of detection and
// callers map them to transport responses with errors.Is.
var (
	// ErrForbidden indicates a permission predicate rejected the actor.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a referenced entity does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation error")

	// ErrDuplicateMembership indicates a uniqueness violation on a
	// set/question membership insert. The triggering transaction is rolled
	// back in full before this error is returned.
	ErrDuplicateMembership = errors.New("duplicate membership")

	// ErrEmbeddingUnavailable indicates the embedding service failed or
	// returned a malformed response. Hard failure: the relational write that
	// depends on the embedding must not happen.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates a vector index operation failed at the
	// transport or engine level. Non-fatal on write paths (the relational
	// change stands), a request failure on read paths.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
