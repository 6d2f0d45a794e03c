package application

import (
	"context"
	"fmt"

	"fxhistory-service/internal/domain"
)

// ReportWindowDays is how far back the PDF report looks.
const ReportWindowDays = 30

type ReportService struct {
	registry *PairRegistry
	rates    RateRepo
	renderer ReportRenderer
	clock    Clock
}

func NewReportService(registry *PairRegistry, rates RateRepo, renderer ReportRenderer, opts ...Option) *ReportService {
	o := buildOptions(opts)
	return &ReportService{registry: registry, rates: rates, renderer: renderer, clock: o.clock}
}

// GenerateReport renders the last 30 days of daily records for from/to,
// creating the pair when it is not known yet.
func (s *ReportService) GenerateReport(ctx context.Context, from, to string) ([]byte, error) {
	if !domain.ValidateCurrencyCode(from) || !domain.ValidateCurrencyCode(to) {
		return nil, fmt.Errorf("%w: currency codes must be 3 characters", ErrInvalidArgument)
	}
	pair, err := s.registry.GetOrCreate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("resolve pair %s/%s: %w", from, to, err)
	}
	end := today(s.clock)
	rates, err := s.rates.ListBetween(ctx, domain.Daily, pair.ID, end.AddDate(0, 0, -ReportWindowDays), end)
	if err != nil {
		return nil, fmt.Errorf("list daily rates: %w", err)
	}
	return s.renderer.Render(ctx, domain.Report{
		FromCurrency: from,
		ToCurrency:   to,
		GeneratedAt:  s.clock.Now(),
		Rates:        rates,
	})
}
