package domain

import (
	"context"
	"time"
)

// CachedEntry is a cached cross-platform scan result together with the moment
// it was written. Callers decide staleness against their own TTL.
type CachedEntry struct {
	Options  []SkinArbitrageOption
	CachedAt time.Time
}

// OpportunityCache stores per-market scan results. Get returns
// (entry, true, nil) on a hit; a miss is (zero, false, nil), not an error.
type OpportunityCache interface {
	Get(ctx context.Context, key string) (CachedEntry, bool, error)
	Set(ctx context.Context, key string, entry CachedEntry) error
}
