package domain

import (
	"context"
	"time"
)

// OpportunityStore persists detected opportunities for later analysis.
type OpportunityStore interface {
	InsertOpportunity(ctx context.Context, opp Opportunity) error
	InsertOptions(ctx context.Context, opts []SkinArbitrageOption) error
	ListRecentOpportunities(ctx context.Context, limit int) ([]Opportunity, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
