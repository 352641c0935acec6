package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkotenko/skinarb/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// InsertOpportunity stores a detected cycle opportunity.
func (s *OpportunityStore) InsertOpportunity(ctx context.Context, opp domain.Opportunity) error {
	const query = `
		INSERT INTO opportunities (
			id, path, profit_percent, profit_value,
			initial_budget, final_budget, liquidity, hops, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	hops, err := json.Marshal(opp.Hops)
	if err != nil {
		return fmt.Errorf("postgres: marshal hops for %s: %w", opp.ID, err)
	}

	_, err = s.pool.Exec(ctx, query,
		opp.ID, opp.Path, opp.ProfitPercent, opp.ProfitValue,
		opp.InitialBudget, opp.FinalBudget, opp.Liquidity, hops, opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// InsertOptions stores a batch of cross-platform options.
func (s *OpportunityStore) InsertOptions(ctx context.Context, opts []domain.SkinArbitrageOption) error {
	const query = `
		INSERT INTO arbitrage_options (
			item_name, game, buy_market, buy_price,
			sell_market, sell_price, profit, profit_percent,
			liquidity, risk_score, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, opt := range opts {
		_, err := s.pool.Exec(ctx, query,
			opt.ItemName, string(opt.Game), opt.BuyMarket, opt.BuyPrice,
			opt.SellMarket, opt.SellPrice, opt.Profit, opt.ProfitPercent,
			opt.Liquidity, opt.RiskScore, opt.DetectedAt,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert option %q: %w", opt.ItemName, err)
		}
	}
	return nil
}

// ListRecentOpportunities returns the latest opportunities by detection time.
func (s *OpportunityStore) ListRecentOpportunities(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `
		SELECT id, path, profit_percent, profit_value,
		       initial_budget, final_budget, liquidity, hops, detected_at
		FROM opportunities
		ORDER BY detected_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		var hops []byte
		if err := rows.Scan(
			&opp.ID, &opp.Path, &opp.ProfitPercent, &opp.ProfitValue,
			&opp.InitialBudget, &opp.FinalBudget, &opp.Liquidity, &hops, &opp.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		if err := json.Unmarshal(hops, &opp.Hops); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal hops for %s: %w", opp.ID, err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunities: %w", err)
	}
	return opps, nil
}

// PruneOlderThan deletes opportunities and options detected before cutoff and
// reports how many opportunity rows were removed.
func (s *OpportunityStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM opportunities WHERE detected_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: prune opportunities: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM arbitrage_options WHERE detected_at < $1", cutoff); err != nil {
		return 0, fmt.Errorf("postgres: prune options: %w", err)
	}
	return tag.RowsAffected(), nil
}
