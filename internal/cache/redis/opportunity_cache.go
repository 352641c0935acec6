package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkotenko/skinarb/internal/domain"
)

// entryTTL bounds how long a scan result lives in Redis. It is deliberately
// longer than the integrator's freshness window: the integrator decides
// staleness from CachedAt, the Redis TTL only prevents unbounded growth.
const entryTTL = 30 * time.Minute

// OpportunityCache implements domain.OpportunityCache on Redis so scan
// results are shared across processes.
//
// Key schema:
//
//	arb:opps:{market} - JSON-serialized domain.CachedEntry
type OpportunityCache struct {
	rdb *redis.Client
}

// NewOpportunityCache creates an OpportunityCache backed by the given Client.
func NewOpportunityCache(c *Client) *OpportunityCache {
	return &OpportunityCache{rdb: c.Underlying()}
}

func oppsKey(market string) string { return "arb:opps:" + market }

// Get retrieves the cached scan result for a market. A missing key is a
// plain miss, not an error.
func (oc *OpportunityCache) Get(ctx context.Context, key string) (domain.CachedEntry, bool, error) {
	data, err := oc.rdb.Get(ctx, oppsKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CachedEntry{}, false, nil
		}
		return domain.CachedEntry{}, false, fmt.Errorf("redis: get opportunities %s: %w", key, err)
	}

	var entry domain.CachedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.CachedEntry{}, false, fmt.Errorf("redis: unmarshal opportunities %s: %w", key, err)
	}
	return entry, true, nil
}

// Set stores the scan result for a market with the housekeeping TTL.
func (oc *OpportunityCache) Set(ctx context.Context, key string, entry domain.CachedEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redis: marshal opportunities %s: %w", key, err)
	}
	if err := oc.rdb.Set(ctx, oppsKey(key), data, entryTTL).Err(); err != nil {
		return fmt.Errorf("redis: set opportunities %s: %w", key, err)
	}
	return nil
}
