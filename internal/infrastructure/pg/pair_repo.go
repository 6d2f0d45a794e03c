package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/domain"
	"fxhistory-service/internal/infrastructure/logx"
)

var _ application.PairRepo = (*PairRepo)(nil)

type PairRepo struct{ db *DB }

func NewPairRepo(db *DB) *PairRepo { return &PairRepo{db: db} }

func (r *PairRepo) Find(ctx context.Context, from, to string) (domain.CurrencyPair, error) {
	const q = `
        SELECT id, from_currency, to_currency FROM currency_pair
        WHERE from_currency=$1 AND to_currency=$2
        ORDER BY id LIMIT 1`
	log := logx.L().With(
		zap.String("repo", "currency_pair"),
		zap.String("operation", "Find"),
		zap.String("pair", from+"/"+to),
	)
	var out domain.CurrencyPair
	err := r.db.Pool.QueryRow(ctx, q, from, to).Scan(&out.ID, &out.FromCurrency, &out.ToCurrency)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debug("sql.query_no_rows")
		return domain.CurrencyPair{}, application.ErrNotFound
	}
	if err != nil {
		log.Error("sql.query_failed", zap.String("sql", q), zap.Error(err))
		return domain.CurrencyPair{}, err
	}
	return out, nil
}

func (r *PairRepo) Create(ctx context.Context, from, to string) (domain.CurrencyPair, error) {
	const ins = `
        INSERT INTO currency_pair(from_currency, to_currency)
        VALUES ($1, $2)
        RETURNING id`
	log := logx.L().With(
		zap.String("repo", "currency_pair"),
		zap.String("operation", "Create"),
		zap.String("sql", ins),
		zap.String("pair", from+"/"+to),
	)
	log.Info("sql.exec_start")
	out := domain.CurrencyPair{FromCurrency: from, ToCurrency: to}
	if err := r.db.Pool.QueryRow(ctx, ins, from, to).Scan(&out.ID); err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return domain.CurrencyPair{}, err
	}
	log.Info("sql.exec_success", zap.Int64("id", out.ID))
	return out, nil
}
