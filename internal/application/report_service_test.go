package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fxhistory-service/internal/domain"
)

func TestReportService_GenerateReport(t *testing.T) {
	t.Parallel()
	pairs := &fakePairRepo{pairs: []domain.CurrencyPair{{ID: 1, FromCurrency: "GBP", ToCurrency: "INR"}}}
	rates := newFakeRateRepo()
	for _, d := range []time.Time{day(2024, 9, 17), day(2024, 9, 18), day(2024, 10, 18)} {
		_, err := rates.Append(context.Background(), domain.Daily, domain.ExchangeRate{PairID: 1, Anchor: d, Close: ptr(1)})
		require.NoError(t, err)
	}
	now := time.Date(2024, 10, 18, 9, 30, 0, 0, time.UTC)
	r := &fakeRenderer{}
	svc := NewReportService(NewPairRegistry(pairs, nil), rates, r, WithClock(FixedClock{T: now}))

	out, err := svc.GenerateReport(context.Background(), "GBP", "INR")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-fake"), out)
	require.Equal(t, "GBP", r.got.FromCurrency)
	require.Equal(t, "INR", r.got.ToCurrency)
	require.Equal(t, now, r.got.GeneratedAt)
	require.Len(t, r.got.Rates, 2)
	require.Equal(t, day(2024, 9, 18), r.got.Rates[0].Anchor)
}

func TestReportService_CreatesUnknownPair(t *testing.T) {
	t.Parallel()
	pairs := &fakePairRepo{}
	r := &fakeRenderer{}
	svc := NewReportService(NewPairRegistry(pairs, nil), newFakeRateRepo(), r)

	_, err := svc.GenerateReport(context.Background(), "USD", "INR")
	require.NoError(t, err)
	require.Equal(t, 1, pairs.creates)
	require.Empty(t, r.got.Rates)
}

func TestReportService_RejectsBadCodes(t *testing.T) {
	t.Parallel()
	svc := NewReportService(NewPairRegistry(&fakePairRepo{}, nil), newFakeRateRepo(), &fakeRenderer{})
	_, err := svc.GenerateReport(context.Background(), "US", "INR")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReportService_WindowFollowsLocation(t *testing.T) {
	t.Parallel()
	pairs := &fakePairRepo{pairs: []domain.CurrencyPair{{ID: 1, FromCurrency: "GBP", ToCurrency: "INR"}}}
	rates := newFakeRateRepo()
	_, err := rates.Append(context.Background(), domain.Daily, domain.ExchangeRate{PairID: 1, Anchor: day(2024, 10, 19), Close: ptr(1)})
	require.NoError(t, err)
	renderer := &fakeRenderer{}
	ist := time.FixedZone("IST", 5*3600+1800)
	clock := FixedClock{T: time.Date(2024, 10, 18, 20, 0, 0, 0, time.UTC)}

	svc := NewReportService(NewPairRegistry(pairs, nil), rates, renderer, WithClock(clock), WithLocation(ist))
	_, err = svc.GenerateReport(context.Background(), "GBP", "INR")
	require.NoError(t, err)
	require.Len(t, renderer.got.Rates, 1)
	require.Equal(t, ist, renderer.got.GeneratedAt.Location())
}
