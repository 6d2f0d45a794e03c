// Package openapi holds the request parameters, response bodies and chi
// bindings of the HTTP API described in api/openapi.yaml.
package openapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Aggregates defines model for Aggregates.
type Aggregates struct {
	MaximumPrice float64 `json:"maximumPrice"`
	MinimumPrice float64 `json:"minimumPrice"`
	AveragePrice float64 `json:"averagePrice"`
}

// DataPoint defines model for DataPoint.
type DataPoint struct {
	Date       openapi_types.Date `json:"date"`
	OpenPrice  *float64           `json:"openPrice"`
	HighPrice  *float64           `json:"highPrice"`
	LowPrice   *float64           `json:"lowPrice"`
	ClosePrice *float64           `json:"closePrice"`
}

// TimeSeriesData defines model for TimeSeriesData.
type TimeSeriesData struct {
	DailyData   []DataPoint `json:"dailyData"`
	WeeklyData  []DataPoint `json:"weeklyData"`
	MonthlyData []DataPoint `json:"monthlyData"`
}

// DataResponse defines model for DataResponse.
type DataResponse struct {
	FromCurrency   string         `json:"fromCurrency"`
	ToCurrency     string         `json:"toCurrency"`
	Period         string         `json:"period"`
	Aggregates     Aggregates     `json:"aggregates"`
	TimeSeriesData TimeSeriesData `json:"timeSeriesData"`
}

// Error defines model for Error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PopulateHistoricalDataParams defines parameters for PopulateHistoricalData.
type PopulateHistoricalDataParams struct {
	FromCurrency string `form:"fromCurrency" json:"fromCurrency"`
	ToCurrency   string `form:"toCurrency" json:"toCurrency"`
	// StartDate and EndDate are yyyy-MM-dd; they are validated by the handler.
	StartDate       string  `form:"startDate" json:"startDate"`
	EndDate         string  `form:"endDate" json:"endDate"`
	XIdempotencyKey *string `json:"X-Idempotency-Key,omitempty"`
}

// GetForexDataParams defines parameters for GetForexData.
type GetForexDataParams struct {
	From   string `form:"from" json:"from"`
	To     string `form:"to" json:"to"`
	Period string `form:"period" json:"period"`
}

// DownloadForexPdfParams defines parameters for DownloadForexPdf.
type DownloadForexPdfParams struct {
	FromCurrency string `form:"fromCurrency" json:"fromCurrency"`
	ToCurrency   string `form:"toCurrency" json:"toCurrency"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /api/populate)
	PopulateHistoricalData(w http.ResponseWriter, r *http.Request, params PopulateHistoricalDataParams)
	// (GET /api/forex-data)
	GetForexData(w http.ResponseWriter, r *http.Request, params GetForexDataParams)
	// (GET /api/forex-pdf)
	DownloadForexPdf(w http.ResponseWriter, r *http.Request, params DownloadForexPdfParams)
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is passed to ErrorHandlerFunc when a query
// parameter is missing or malformed.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

type wrapper struct {
	handler          ServerInterface
	middlewares      []func(http.Handler) http.Handler
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (w *wrapper) serve(rw http.ResponseWriter, r *http.Request, h http.Handler) {
	for i := len(w.middlewares) - 1; i >= 0; i-- {
		h = w.middlewares[i](h)
	}
	h.ServeHTTP(rw, r)
}

type queryParam struct {
	name string
	dest any
}

// bindQuery binds required form-style query parameters in order. It reports
// false after handing the first failure to the error handler.
func (w *wrapper) bindQuery(rw http.ResponseWriter, r *http.Request, params ...queryParam) bool {
	q := r.URL.Query()
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, true, p.name, q, p.dest); err != nil {
			w.errorHandlerFunc(rw, r, &InvalidParamFormatError{ParamName: p.name, Err: err})
			return false
		}
	}
	return true
}

func (w *wrapper) PopulateHistoricalData(rw http.ResponseWriter, r *http.Request) {
	var params PopulateHistoricalDataParams
	if !w.bindQuery(rw, r,
		queryParam{"fromCurrency", &params.FromCurrency},
		queryParam{"toCurrency", &params.ToCurrency},
		queryParam{"startDate", &params.StartDate},
		queryParam{"endDate", &params.EndDate},
	) {
		return
	}
	if v := r.Header.Get("X-Idempotency-Key"); v != "" {
		params.XIdempotencyKey = &v
	}
	w.serve(rw, r, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w.handler.PopulateHistoricalData(rw, r, params)
	}))
}

func (w *wrapper) GetForexData(rw http.ResponseWriter, r *http.Request) {
	var params GetForexDataParams
	if !w.bindQuery(rw, r,
		queryParam{"from", &params.From},
		queryParam{"to", &params.To},
		queryParam{"period", &params.Period},
	) {
		return
	}
	w.serve(rw, r, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w.handler.GetForexData(rw, r, params)
	}))
}

func (w *wrapper) DownloadForexPdf(rw http.ResponseWriter, r *http.Request) {
	var params DownloadForexPdfParams
	if !w.bindQuery(rw, r,
		queryParam{"fromCurrency", &params.FromCurrency},
		queryParam{"toCurrency", &params.ToCurrency},
	) {
		return
	}
	w.serve(rw, r, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w.handler.DownloadForexPdf(rw, r, params)
	}))
}

// HandlerWithOptions mounts the API routes on options.BaseRouter (or a new
// chi router) and returns it.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	w := &wrapper{
		handler:          si,
		middlewares:      options.Middlewares,
		errorHandlerFunc: options.ErrorHandlerFunc,
	}
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/populate", w.PopulateHistoricalData)
		r.Get(options.BaseURL+"/api/forex-data", w.GetForexData)
		r.Get(options.BaseURL+"/api/forex-pdf", w.DownloadForexPdf)
	})
	return r
}
