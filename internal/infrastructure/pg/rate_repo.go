package pg

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/domain"
	"fxhistory-service/internal/infrastructure/logx"
)

var _ application.RateRepo = (*RateRepo)(nil)

// RateRepo appends to and reads from the per-granularity record tables.
// Table and anchor column names come from domain.Granularity, never from
// user input.
type RateRepo struct{ db *DB }

func NewRateRepo(db *DB) *RateRepo { return &RateRepo{db: db} }

func (r *RateRepo) Append(ctx context.Context, g domain.Granularity, rate domain.ExchangeRate) (domain.ExchangeRate, error) {
	ins := fmt.Sprintf(`
        INSERT INTO %s(currency_pair_id, %s, open_price, high_price, low_price, close_price)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`, g.Table, g.AnchorColumn)
	log := logx.L().With(
		zap.String("repo", g.Table),
		zap.String("operation", "Append"),
		zap.Int64("pair_id", rate.PairID),
		zap.String("anchor", rate.Anchor.Format(time.DateOnly)),
	)
	err := r.db.Pool.QueryRow(ctx, ins,
		rate.PairID, rate.Anchor, rate.Open, rate.High, rate.Low, rate.Close,
	).Scan(&rate.ID)
	if err != nil {
		log.Error("sql.exec_failed", zap.String("sql", ins), zap.Error(err))
		return domain.ExchangeRate{}, err
	}
	log.Debug("sql.exec_success", zap.Int64("id", rate.ID))
	rate.Granularity = g
	return rate, nil
}

func (r *RateRepo) ListBetween(ctx context.Context, g domain.Granularity, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error) {
	q := fmt.Sprintf(`
        SELECT id, %[2]s, open_price, high_price, low_price, close_price
        FROM %[1]s
        WHERE currency_pair_id=$1 AND %[2]s BETWEEN $2 AND $3
        ORDER BY %[2]s, id`, g.Table, g.AnchorColumn)
	log := logx.L().With(
		zap.String("repo", g.Table),
		zap.String("operation", "ListBetween"),
		zap.Int64("pair_id", pairID),
	)
	rows, err := r.db.Pool.Query(ctx, q, pairID, from, to)
	if err != nil {
		log.Error("sql.query_failed", zap.String("sql", q), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []domain.ExchangeRate{}
	for rows.Next() {
		rate := domain.ExchangeRate{PairID: pairID, Granularity: g}
		if err := rows.Scan(&rate.ID, &rate.Anchor, &rate.Open, &rate.High, &rate.Low, &rate.Close); err != nil {
			log.Error("sql.scan_failed", zap.Error(err))
			return nil, err
		}
		rate.Anchor = domain.DateOf(rate.Anchor)
		out = append(out, rate)
	}
	if err := rows.Err(); err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return nil, err
	}
	log.Debug("sql.query_success", zap.Int("rows", len(out)))
	return out, nil
}
