package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flasharb/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const opportunityColumns = `
	id, pair, buy_exchange, sell_exchange, buy_price, sell_price,
	profit_pct, loan_amount, flashloan_fee, est_gas_cost, net_profit,
	executed, tx_hash, detected_at`

// Insert records one opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.FlashloanOpportunity) error {
	const query = `
		INSERT INTO opportunities (` + opportunityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.Pair.String(), opp.BuyExchange, opp.SellExchange,
		opp.BuyPrice, opp.SellPrice,
		opp.ProfitPct, opp.LoanAmount, opp.FlashloanFee, opp.EstGasCost, opp.NetProfit,
		opp.Executed, opp.TxHash, opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns up to limit opportunities, newest first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.FlashloanOpportunity, error) {
	const query = `
		SELECT ` + opportunityColumns + `
		FROM opportunities
		ORDER BY detected_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

// ListBefore returns all opportunities detected strictly before the cutoff,
// oldest first.
func (s *OpportunityStore) ListBefore(ctx context.Context, before time.Time) ([]domain.FlashloanOpportunity, error) {
	const query = `
		SELECT ` + opportunityColumns + `
		FROM opportunities
		WHERE detected_at < $1
		ORDER BY detected_at ASC`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities before %v: %w", before, err)
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

// DeleteBefore removes opportunities detected strictly before the cutoff and
// returns the number of rows removed.
func (s *OpportunityStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM opportunities WHERE detected_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete opportunities before %v: %w", before, err)
	}
	return tag.RowsAffected(), nil
}

// Metrics aggregates the full opportunity history.
func (s *OpportunityStore) Metrics(ctx context.Context) (domain.ExecutionMetrics, error) {
	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE executed),
			COALESCE(SUM(net_profit), 0),
			COALESCE(AVG(net_profit), 0),
			MAX(detected_at),
			MAX(detected_at) FILTER (WHERE executed)
		FROM opportunities`

	var m domain.ExecutionMetrics
	err := s.pool.QueryRow(ctx, query).Scan(
		&m.TotalDetected,
		&m.TotalExecuted,
		&m.TotalNetProfit,
		&m.AvgNetProfit,
		&m.LastDetectedAt,
		&m.LastExecutedAt,
	)
	if err != nil {
		return domain.ExecutionMetrics{}, fmt.Errorf("postgres: opportunity metrics: %w", err)
	}
	return m, nil
}

func scanOpportunities(rows pgx.Rows) ([]domain.FlashloanOpportunity, error) {
	var out []domain.FlashloanOpportunity
	for rows.Next() {
		var (
			opp     domain.FlashloanOpportunity
			rawPair string
		)
		err := rows.Scan(
			&opp.ID, &rawPair, &opp.BuyExchange, &opp.SellExchange,
			&opp.BuyPrice, &opp.SellPrice,
			&opp.ProfitPct, &opp.LoanAmount, &opp.FlashloanFee, &opp.EstGasCost, &opp.NetProfit,
			&opp.Executed, &opp.TxHash, &opp.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		pair, err := domain.ParsePair(rawPair)
		if err != nil {
			return nil, fmt.Errorf("postgres: opportunity %s holds malformed pair: %w", opp.ID, err)
		}
		opp.Pair = pair
		out = append(out, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunities: %w", err)
	}
	return out, nil
}
