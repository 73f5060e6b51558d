package db

import (
	"context"
	"time"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ListStore provides append-only list operations.
type ListStore interface {
	// RPushTrim appends value to the list at key and, when maxLen > 0, keeps only the newest maxLen items.
	RPushTrim(ctx context.Context, key string, value []byte, maxLen int) error
	// LRange returns items start..stop inclusive; negative indexes count from the end.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// Cache is the key-value facade used by the embedding cache and the history backend.
type Cache interface {
	Pinger
	KVStore
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}
