package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/domain"
)

const (
	DocumentTitle = "Forex Exchange Rate Report"
	NoDataNotice  = "No data available for the selected currencies."

	timestampLayout = "2006-01-02 15:04:05"
	chartImageName  = "close-chart"
	colWidth        = 38.0
	rowHeight       = 8.0
)

var tableHeader = []string{"Date", "Open", "High", "Low", "Close"}

var _ application.ReportRenderer = (*PDFRenderer)(nil)

// PDFRenderer lays out the A4 exchange-rate report.
type PDFRenderer struct {
	Creator string
	Log     *zap.Logger
}

func NewPDFRenderer(creator string, log *zap.Logger) *PDFRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &PDFRenderer{Creator: creator, Log: log}
}

// Render produces the report document. A chart that cannot be drawn is
// logged and left out; the table is always present when there are rates.
func (p *PDFRenderer) Render(ctx context.Context, r domain.Report) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Forex Data Report", true)
	pdf.SetSubject("Forex Exchange Rate Data", true)
	pdf.SetKeywords("Forex, Exchange Rate, Currency", true)
	pdf.SetCreator(p.Creator, true)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, DocumentTitle, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s to %s", r.FromCurrency, r.ToCurrency), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 12)
	pdf.CellFormat(0, 8, "Generated on: "+r.GeneratedAt.Format(timestampLayout), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	if len(r.Rates) == 0 {
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 10, NoDataNotice, "", 1, "C", false, 0, "")
		return output(pdf)
	}

	writeTable(pdf, buildTable(r.Rates))

	if png, err := renderCloseChart(r.FromCurrency+"/"+r.ToCurrency+" close", r.Rates); err != nil {
		p.Log.Info("report.chart_skipped", zap.String("pair", r.FromCurrency+"/"+r.ToCurrency), zap.Error(err))
	} else {
		pdf.Ln(6)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(chartImageName, opts, bytes.NewReader(png))
		pdf.ImageOptions(chartImageName, pdf.GetX(), pdf.GetY(), colWidth*float64(len(tableHeader)), 0, true, opts, 0, "")
	}
	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// buildTable returns the header row followed by one row per rate.
func buildTable(rates []domain.ExchangeRate) [][]string {
	rows := make([][]string, 0, len(rates)+1)
	rows = append(rows, tableHeader)
	for _, r := range rates {
		rows = append(rows, []string{
			r.Anchor.Format(time.DateOnly),
			formatPrice(r.Open),
			formatPrice(r.High),
			formatPrice(r.Low),
			formatPrice(r.Close),
		})
	}
	return rows
}

func formatPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

func writeTable(pdf *fpdf.Fpdf, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range rows[0] {
		pdf.CellFormat(colWidth, rowHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows[1:] {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(colWidth, rowHeight, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}
