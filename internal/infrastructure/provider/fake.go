package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/domain"
)

var _ application.SourceFetcher = (*Fake)(nil)

// Fake serves a generated history page for any symbol: one row per day
// (or week, or month) of the requested window with a flat price.
type Fake struct {
	price float64
}

func NewFake(price float64) *Fake { return &Fake{price: price} }

func (f *Fake) Fetch(_ context.Context, _ string, fromUnix, toUnix int64, token string) ([]byte, error) {
	var rows []domain.RawRow
	start := time.Unix(fromUnix, 0).UTC()
	end := time.Unix(toUnix, 0).UTC()
	for d := start; d.Before(end); d = step(d, token) {
		p := fmt.Sprintf("%.4f", f.price)
		rows = append(rows, domain.RawRow{Date: d.Format(domain.SourceDateLayout), Open: p, High: p, Low: p, Close: p})
	}
	return RenderHistoryTable(rows), nil
}

func step(d time.Time, token string) time.Time {
	switch token {
	case domain.Weekly.Token:
		return d.AddDate(0, 0, 7)
	case domain.Monthly.Token:
		return d.AddDate(0, 1, 0)
	default:
		return d.AddDate(0, 0, 1)
	}
}

// RenderHistoryTable renders rows given oldest first as a newest-first table in
// the markup layout of the history page.
func RenderHistoryTable(rows []domain.RawRow) []byte {
	var b strings.Builder
	b.WriteString(`<html><body><div class="table-container"><table><thead><tr>`)
	b.WriteString(`<th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Adj Close</th><th>Volume</th>`)
	b.WriteString(`</tr></thead><tbody>`)
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>-</td></tr>`,
			r.Date, r.Open, r.High, r.Low, r.Close, r.Close)
	}
	b.WriteString(`</tbody></table></div></body></html>`)
	return []byte(b.String())
}
