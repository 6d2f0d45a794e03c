package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/domain"
	"fxhistory-service/internal/infrastructure/logx"
)

var (
	_ application.PairRepo = (*PairRepo)(nil)
	_ application.RateRepo = (*RateRepo)(nil)
)

type PairRepo struct{ db *DB }

func NewPairRepo(db *DB) *PairRepo { return &PairRepo{db: db} }

func (r *PairRepo) Find(ctx context.Context, from, to string) (domain.CurrencyPair, error) {
	const q = `SELECT id, from_currency, to_currency FROM currency_pair
		WHERE from_currency = ? AND to_currency = ? ORDER BY id LIMIT 1`
	var out domain.CurrencyPair
	err := r.db.SQL.QueryRowContext(ctx, q, from, to).Scan(&out.ID, &out.FromCurrency, &out.ToCurrency)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CurrencyPair{}, application.ErrNotFound
	}
	if err != nil {
		logx.L().Error("sql.query_failed", zap.String("repo", "currency_pair"), zap.String("operation", "Find"), zap.Error(err))
		return domain.CurrencyPair{}, err
	}
	return out, nil
}

func (r *PairRepo) Create(ctx context.Context, from, to string) (domain.CurrencyPair, error) {
	res, err := r.db.SQL.ExecContext(ctx, `INSERT INTO currency_pair(from_currency, to_currency) VALUES (?, ?)`, from, to)
	if err != nil {
		logx.L().Error("sql.exec_failed", zap.String("repo", "currency_pair"), zap.String("operation", "Create"), zap.Error(err))
		return domain.CurrencyPair{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.CurrencyPair{}, err
	}
	return domain.CurrencyPair{ID: id, FromCurrency: from, ToCurrency: to}, nil
}

// RateRepo stores anchors as YYYY-MM-DD text so range filters compare
// lexically in date order.
type RateRepo struct{ db *DB }

func NewRateRepo(db *DB) *RateRepo { return &RateRepo{db: db} }

func nullable(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func (r *RateRepo) Append(ctx context.Context, g domain.Granularity, rate domain.ExchangeRate) (domain.ExchangeRate, error) {
	ins := fmt.Sprintf(`INSERT INTO %s(currency_pair_id, %s, open_price, high_price, low_price, close_price)
		VALUES (?, ?, ?, ?, ?, ?)`, g.Table, g.AnchorColumn)
	res, err := r.db.SQL.ExecContext(ctx, ins,
		rate.PairID, rate.Anchor.Format(time.DateOnly),
		nullable(rate.Open), nullable(rate.High), nullable(rate.Low), nullable(rate.Close),
	)
	if err != nil {
		logx.L().Error("sql.exec_failed", zap.String("repo", g.Table), zap.String("operation", "Append"), zap.Error(err))
		return domain.ExchangeRate{}, err
	}
	if rate.ID, err = res.LastInsertId(); err != nil {
		return domain.ExchangeRate{}, err
	}
	rate.Granularity = g
	return rate, nil
}

func (r *RateRepo) ListBetween(ctx context.Context, g domain.Granularity, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error) {
	q := fmt.Sprintf(`SELECT id, %[2]s, open_price, high_price, low_price, close_price
		FROM %[1]s WHERE currency_pair_id = ? AND %[2]s BETWEEN ? AND ?
		ORDER BY %[2]s, id`, g.Table, g.AnchorColumn)
	rows, err := r.db.SQL.QueryContext(ctx, q, pairID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		logx.L().Error("sql.query_failed", zap.String("repo", g.Table), zap.String("operation", "ListBetween"), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []domain.ExchangeRate{}
	for rows.Next() {
		var (
			rate       = domain.ExchangeRate{PairID: pairID, Granularity: g}
			anchor     string
			o, h, l, c sql.NullFloat64
		)
		if err := rows.Scan(&rate.ID, &anchor, &o, &h, &l, &c); err != nil {
			return nil, err
		}
		if rate.Anchor, err = time.Parse(time.DateOnly, anchor); err != nil {
			return nil, fmt.Errorf("%s: bad anchor %q: %w", g.Table, anchor, err)
		}
		rate.Open, rate.High, rate.Low, rate.Close = ptr(o), ptr(h), ptr(l), ptr(c)
		out = append(out, rate)
	}
	return out, rows.Err()
}
