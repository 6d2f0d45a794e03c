package provider

import (
	"bytes"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/domain"
)

var _ application.HistoryParser = HistoryParser{}

// minCells is the column count of a quote row: date, open, high, low,
// close, adj close, volume. Dividend and split rows have fewer.
const minCells = 7

// HistoryParser extracts quote rows from the history page's table.
type HistoryParser struct{}

func (HistoryParser) Parse(doc []byte) (iter.Seq[domain.RawRow], error) {
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil, &domain.ParseError{Reason: "read document", Err: err}
	}
	table := d.Find("div.table-container table").First()
	if table.Length() == 0 {
		table = d.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, &domain.ParseError{Reason: "history table not found"}
	}

	var rows []domain.RawRow
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < minCells {
			return
		}
		text := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }
		rows = append(rows, domain.RawRow{
			Date:  text(0),
			Open:  text(1),
			High:  text(2),
			Low:   text(3),
			Close: text(4),
		})
	})

	return func(yield func(domain.RawRow) bool) {
		for _, r := range rows {
			if !yield(r) {
				return
			}
		}
	}, nil
}
