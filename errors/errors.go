// Package errors defines all exported error sentinels for the hull3d library.
//
// This is the single source of truth for error values. The top-level hull3d
// package, the claimmap package, and the pointfile package all import from
// here, ensuring errors.Is checks work across package boundaries.
package errors

import "errors"

// Claim map errors
var (
	// ErrTableFull is returned by InsertAndClaim when the linear probe wraps
	// back to its starting index without finding a free slot. The table never
	// rehashes, so this is fatal for the operation: callers must size the map
	// for their total insertion count, not their distinct-key count.
	ErrTableFull = errors.New("hull3d: claim map table is full")
)

// Hull construction errors
var (
	ErrTooFewPoints      = errors.New("hull3d: convex hull requires at least 4 points")
	ErrRidgeOwnerMissing = errors.New("hull3d: lost ridge claim but no other owner recorded")
)

// Point file errors
var (
	ErrInvalidMagic       = errors.New("hull3d: invalid point file magic number")
	ErrInvalidVersion     = errors.New("hull3d: unsupported point file version")
	ErrTruncatedFile      = errors.New("hull3d: point file is truncated")
	ErrChecksumFailed     = errors.New("hull3d: point file checksum verification failed")
	ErrPointCountMismatch = errors.New("hull3d: point count does not match file length")
)
