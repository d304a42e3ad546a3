package domain

import (
	"context"
	"io"
	"time"
)

// ConfigStore persists the runtime BotConfig. Load returns ErrNotFound when
// no configuration has ever been saved; the caller falls back to defaults.
type ConfigStore interface {
	Load(ctx context.Context) (BotConfig, error)
	Save(ctx context.Context, cfg BotConfig) error
}

// OpportunityStore records every executable opportunity a scan cycle
// produced, executed or not, and serves the history and metrics queries.
type OpportunityStore interface {
	Insert(ctx context.Context, opp FlashloanOpportunity) error
	ListRecent(ctx context.Context, limit int) ([]FlashloanOpportunity, error)
	// ListBefore returns all opportunities detected strictly before the
	// cutoff, oldest first. Used by the cold-storage archiver.
	ListBefore(ctx context.Context, before time.Time) ([]FlashloanOpportunity, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	Metrics(ctx context.Context) (ExecutionMetrics, error)
}

// PriceCache keeps the most recent per-exchange quotes for each pair so the
// API can show what the scanner last saw, including how stale it is.
type PriceCache interface {
	SetSnapshot(ctx context.Context, pair string, snapshot PriceSnapshot, ts time.Time) error
	GetSnapshot(ctx context.Context, pair string) (PriceSnapshot, time.Time, error)
}

// LockManager provides distributed mutual exclusion. Acquire returns an
// unlock function on success and ErrLockHeld when another party holds the
// lock.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RateLimiter bounds request rates per key. Allow counts the request when it
// is permitted.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// BlobWriter uploads an object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
