package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/domain"
	"fxhistory-service/internal/infrastructure/http/openapi"
	"fxhistory-service/internal/infrastructure/logx"
)

var _ openapi.ServerInterface = (*Server)(nil)

type Populator interface {
	Populate(ctx context.Context, from, to string, start, end time.Time, idemKey string) error
}

type ForexQuerier interface {
	GetForexData(ctx context.Context, from, to, period string) (domain.ForexData, error)
}

type ReportGenerator interface {
	GenerateReport(ctx context.Context, from, to string) ([]byte, error)
}

type Server struct {
	populator Populator
	forex     ForexQuerier
	reports   ReportGenerator
	ping      func(ctx context.Context) error
}

func NewServer(populator Populator, forex ForexQuerier, reports ReportGenerator) *Server {
	return &Server{populator: populator, forex: forex, reports: reports}
}

// SetReadyCheck sets the storage probe used by /readyz.
func (s *Server) SetReadyCheck(f func(ctx context.Context) error) { s.ping = f }

func (s *Server) PopulateHistoricalData(w http.ResponseWriter, r *http.Request, params openapi.PopulateHistoricalDataParams) {
	log := logx.WithFields(r.Context())
	idem := ""
	if params.XIdempotencyKey != nil {
		idem = *params.XIdempotencyKey
	}
	err := s.populate(r.Context(), params, idem)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, fmt.Sprintf("Historical data has been populated successfully for: %s to %s",
			params.FromCurrency, params.ToCurrency))
	case errors.Is(err, application.ErrConflict):
		writeError(w, http.StatusConflict, "duplicate request")
	default:
		log.Error("populate.request_failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Failed to populate historical data: "+err.Error())
	}
}

func (s *Server) populate(ctx context.Context, params openapi.PopulateHistoricalDataParams, idem string) error {
	start, err := time.Parse(time.DateOnly, params.StartDate)
	if err != nil {
		return fmt.Errorf("invalid startDate %q", params.StartDate)
	}
	end, err := time.Parse(time.DateOnly, params.EndDate)
	if err != nil {
		return fmt.Errorf("invalid endDate %q", params.EndDate)
	}
	return s.populator.Populate(ctx, params.FromCurrency, params.ToCurrency, start, end, idem)
}

func (s *Server) GetForexData(w http.ResponseWriter, r *http.Request, params openapi.GetForexDataParams) {
	data, err := s.forex.GetForexData(r.Context(), params.From, params.To, params.Period)
	if err != nil {
		if errors.Is(err, application.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logx.WithFields(r.Context()).Error("forex_data.request_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toDataResponse(data))
}

func (s *Server) DownloadForexPdf(w http.ResponseWriter, r *http.Request, params openapi.DownloadForexPdfParams) {
	doc, err := s.reports.GenerateReport(r.Context(), params.FromCurrency, params.ToCurrency)
	if err != nil {
		if errors.Is(err, application.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logx.WithFields(r.Context()).Error("forex_pdf.request_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s_report.pdf"`, params.FromCurrency, params.ToCurrency))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func toDataResponse(d domain.ForexData) openapi.DataResponse {
	return openapi.DataResponse{
		FromCurrency: d.FromCurrency,
		ToCurrency:   d.ToCurrency,
		Period:       d.Period,
		Aggregates: openapi.Aggregates{
			MaximumPrice: d.Aggregates.Max,
			MinimumPrice: d.Aggregates.Min,
			AveragePrice: d.Aggregates.Avg,
		},
		TimeSeriesData: openapi.TimeSeriesData{
			DailyData:   toDataPoints(d.Daily),
			WeeklyData:  toDataPoints(d.Weekly),
			MonthlyData: toDataPoints(d.Monthly),
		},
	}
}

func toDataPoints(rates []domain.ExchangeRate) []openapi.DataPoint {
	out := make([]openapi.DataPoint, 0, len(rates))
	for _, r := range rates {
		out = append(out, openapi.DataPoint{
			Date:       openapi_types.Date{Time: r.Anchor},
			OpenPrice:  r.Open,
			HighPrice:  r.High,
			LowPrice:   r.Low,
			ClosePrice: r.Close,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, openapi.Error{Code: status, Message: msg})
}
