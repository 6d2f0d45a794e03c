package httpserver

import (
	"context"
	"time"

	"fxhistory-service/internal/domain"
)

type populateCall struct {
	from, to   string
	start, end time.Time
	idem       string
}

type fakePopulator struct {
	calls []populateCall
	err   error
}

func (f *fakePopulator) Populate(_ context.Context, from, to string, start, end time.Time, idem string) error {
	f.calls = append(f.calls, populateCall{from, to, start, end, idem})
	return f.err
}

type fakeForex struct {
	data domain.ForexData
	err  error
}

func (f *fakeForex) GetForexData(_ context.Context, from, to, period string) (domain.ForexData, error) {
	if f.err != nil {
		return domain.ForexData{}, f.err
	}
	d := f.data
	d.FromCurrency, d.ToCurrency, d.Period = from, to, period
	return d, nil
}

type fakeReports struct {
	doc []byte
	err error
}

func (f *fakeReports) GenerateReport(context.Context, string, string) ([]byte, error) {
	return f.doc, f.err
}
