// Package cache stores rendered artifacts between CLI runs.
//
// The render core keeps its bitmaps in memory (see package raster); this
// package covers the outer layer: PNG frames and DOT/SVG exports keyed by a
// content hash of the scene plus the options that shaped the output. A
// [Keyer] builds those keys so every producer agrees on them.
//
// Two backends are provided: [FileCache] under the user cache directory, and
// [NullCache] for --no-cache runs and tests.
package cache

import (
	"context"
	"time"
)

// Default expiries for cached artifacts.
const (
	TTLFrame  = 7 * 24 * time.Hour
	TTLExport = 7 * 24 * time.Hour
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the data stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
