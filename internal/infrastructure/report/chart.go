package report

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"fxhistory-service/internal/domain"
)

// renderCloseChart draws the close-price series as a PNG line chart.
// Records without a close are left out.
func renderCloseChart(title string, rates []domain.ExchangeRate) ([]byte, error) {
	var (
		xs []time.Time
		ys []float64
	)
	for _, r := range rates {
		if r.Close == nil {
			continue
		}
		xs = append(xs, r.Anchor)
		ys = append(ys, *r.Close)
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("need at least 2 close prices, got %d", len(xs))
	}

	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo, hi = math.Min(lo, y), math.Max(hi, y)
	}
	if hi == lo {
		pad := math.Max(math.Abs(hi)*0.01, 0.01)
		lo, hi = lo-pad, hi+pad
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 360,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.4f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Close",
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"),
					StrokeWidth: 2,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
