package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"flasharb/internal/domain"
)

// snapshotTTL bounds how long a stale snapshot is served after the scanner
// stops writing.
const snapshotTTL = 10 * time.Minute

// SnapshotCache implements domain.PriceCache using Redis hashes. Each pair's
// latest quotes live at key "prices:{pair}" with one field per exchange plus
// a "ts" field holding the scan time in Unix nanoseconds.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

func snapshotKey(pair string) string {
	return "prices:" + pair
}

// SetSnapshot stores the latest per-exchange quotes for a pair, replacing
// whatever was there before so exchanges that dropped out of the snapshot do
// not linger.
func (sc *SnapshotCache) SetSnapshot(ctx context.Context, pair string, snapshot domain.PriceSnapshot, ts time.Time) error {
	key := snapshotKey(pair)

	fields := make(map[string]interface{}, len(snapshot)+1)
	for exchange, price := range snapshot {
		fields[exchange] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	fields["ts"] = strconv.FormatInt(ts.UnixNano(), 10)

	pipe := sc.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, snapshotTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set snapshot %s: %w", pair, err)
	}
	return nil
}

// GetSnapshot retrieves the latest quotes and scan time for a pair. It
// returns domain.ErrNotFound when no snapshot has been cached.
func (sc *SnapshotCache) GetSnapshot(ctx context.Context, pair string) (domain.PriceSnapshot, time.Time, error) {
	vals, err := sc.rdb.HGetAll(ctx, snapshotKey(pair)).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: get snapshot %s: %w", pair, err)
	}
	if len(vals) == 0 {
		return nil, time.Time{}, domain.ErrNotFound
	}

	tsStr, ok := vals["ts"]
	if !ok {
		return nil, time.Time{}, domain.ErrNotFound
	}
	tsNano, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: parse snapshot ts %s: %w", pair, err)
	}

	snapshot := make(domain.PriceSnapshot, len(vals)-1)
	for field, raw := range vals {
		if field == "ts" {
			continue
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("redis: parse snapshot price %s/%s: %w", pair, field, err)
		}
		snapshot[field] = price
	}

	return snapshot, time.Unix(0, tsNano).UTC(), nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*SnapshotCache)(nil)
