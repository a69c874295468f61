// Package api provides the HTTP REST API server for the alpha/beta
// analyzer.
//
// It exposes endpoints for static alpha/beta analysis, rolling trend
// computation, CSV validation, and raw price retrieval.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/alphabeta/internal/analysis"
	"github.com/seenimoa/alphabeta/internal/config"
	"github.com/seenimoa/alphabeta/internal/dataset"
	"github.com/seenimoa/alphabeta/internal/datasource"
	"github.com/seenimoa/alphabeta/internal/infra"
	"github.com/seenimoa/alphabeta/pkg/models"
	"github.com/seenimoa/alphabeta/pkg/utils"
)

// Version is stamped at build time by the CLI entrypoint.
var Version = "dev"

// maxValidateBody caps the CSV upload size accepted by /validate.
const maxValidateBody = 32 << 20 // 32 MiB

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	prices  *datasource.Client
	results *infra.Cache
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) *Server {
	srv := &Server{
		cfg: cfg,
		prices: datasource.NewClient(datasource.Options{
			CacheTTL:          time.Duration(cfg.Datasource.CacheTTL) * time.Second,
			RequestsPerSecond: cfg.Datasource.RequestsPerSecond,
			ConcurrentFetches: cfg.Datasource.ConcurrentFetches,
		}),
		results: infra.NewCache(time.Duration(cfg.Analysis.ResultCacheTTL) * time.Second),
	}
	srv.router = srv.buildRouter()
	return srv
}

// SetPriceClient swaps the Yahoo Finance client. Tests point it at an
// httptest server.
func (s *Server) SetPriceClient(c *datasource.Client) {
	s.prices = c
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Analysis
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/rolling", s.handleRolling)

		// CSV validation
		r.Post("/validate", s.handleValidate)

		// Raw prices
		r.Get("/prices", s.handlePrices)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze and /rolling.
// Omitted fields fall back to the server's configured defaults.
type AnalyzeRequest struct {
	Stock        string   `json:"stock"`
	Benchmark    string   `json:"benchmark"`
	RiskFreeRate *float64 `json:"riskFreeRate,omitempty"` // annual %, pointer so 0 is distinguishable
	PeriodWeeks  int      `json:"periodWeeks,omitempty"`  // 156 or 260
	LogReturns   *bool    `json:"logReturns,omitempty"`
	WindowWeeks  int      `json:"windowWeeks,omitempty"` // rolling only
	StepWeeks    int      `json:"stepWeeks,omitempty"`   // rolling only
	From         string   `json:"from,omitempty"`        // YYYY-MM-DD
	To           string   `json:"to,omitempty"`          // YYYY-MM-DD, default today
	CSV          string   `json:"csv,omitempty"`         // inline price table; skips the data source when set
}

// AnalyzeResponse wraps a static analysis result with its inputs.
type AnalyzeResponse struct {
	Stock        string                 `json:"stock"`
	Benchmark    string                 `json:"benchmark"`
	RiskFreeRate float64                `json:"riskFreeRate"`
	PeriodWeeks  int                    `json:"periodWeeks"`
	LogReturns   bool                   `json:"logReturns"`
	Result       *models.AnalysisResult `json:"result"`
}

// RollingResponse wraps a rolling trend with its inputs.
type RollingResponse struct {
	Stock        string                `json:"stock"`
	Benchmark    string                `json:"benchmark"`
	RiskFreeRate float64               `json:"riskFreeRate"`
	WindowWeeks  int                   `json:"windowWeeks"`
	StepWeeks    int                   `json:"stepWeeks"`
	LogReturns   bool                  `json:"logReturns"`
	Result       *models.RollingResult `json:"result"`
}

// ValidateResponse reports what a CSV upload contained.
type ValidateResponse struct {
	Columns []string                  `json:"columns"`
	Report  *dataset.ValidationReport `json:"report"`
}

// PricesResponse carries a fetched price table. Cells use pointers so that
// missing prices serialize as null (NaN is not valid JSON).
type PricesResponse struct {
	Dates   []string              `json:"dates"`
	Columns []string              `json:"columns"`
	Prices  map[string][]*float64 `json:"prices"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, params, from, to, ok := s.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	cacheKey := requestDigest("analyze", req)
	if cached, found := s.results.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: cached})
		return
	}

	table, ok := s.requestTable(w, r, req, params, from, to)
	if !ok {
		return
	}

	result, _, err := analysis.RunStatic(table, params)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	resp := AnalyzeResponse{
		Stock:        params.Stock,
		Benchmark:    params.Benchmark,
		RiskFreeRate: params.RiskFreeRatePct,
		PeriodWeeks:  params.PeriodWeeks,
		LogReturns:   params.UseLogReturns,
		Result:       result,
	}
	s.results.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleRolling(w http.ResponseWriter, r *http.Request) {
	req, params, from, to, ok := s.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	cacheKey := requestDigest("rolling", req)
	if cached, found := s.results.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: cached})
		return
	}

	table, ok := s.requestTable(w, r, req, params, from, to)
	if !ok {
		return
	}

	result, err := analysis.RunRolling(table, params)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	resp := RollingResponse{
		Stock:        params.Stock,
		Benchmark:    params.Benchmark,
		RiskFreeRate: params.RiskFreeRatePct,
		WindowWeeks:  params.WindowWeeks,
		StepWeeks:    params.StepWeeks,
		LogReturns:   params.UseLogReturns,
		Result:       &result,
	}
	s.results.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxValidateBody)
	defer body.Close()

	table, report, err := dataset.Load(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dataset.Clean(table, report)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ValidateResponse{
			Columns: table.Columns,
			Report:  report,
		},
	})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	symbols := utils.SplitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols query parameter is required")
		return
	}

	to := time.Now().UTC()
	if v := r.URL.Query().Get("to"); v != "" {
		var err error
		if to, err = utils.ParseFlexibleDate(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; use YYYY-MM-DD")
			return
		}
	}
	from := to.AddDate(-3, 0, 0)
	if v := r.URL.Query().Get("from"); v != "" {
		var err error
		if from, err = utils.ParseFlexibleDate(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date; use YYYY-MM-DD")
			return
		}
	}
	if !from.Before(to) {
		writeError(w, http.StatusBadRequest, "from must precede to")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	table, err := s.prices.PriceTable(ctx, symbols, from, to)
	if err != nil {
		writeFetchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    tableToPayload(table),
	})
}

// ============================================================
// Helpers
// ============================================================

// decodeAnalyzeRequest parses and validates the shared analyze/rolling
// request body, merging with configured defaults. Writes the error response
// itself when validation fails.
func (s *Server) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (AnalyzeRequest, models.AnalysisParams, time.Time, time.Time, bool) {
	var req AnalyzeRequest
	var zero models.AnalysisParams

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, zero, time.Time{}, time.Time{}, false
	}
	if req.Stock == "" || req.Benchmark == "" {
		writeError(w, http.StatusBadRequest, "stock and benchmark are required")
		return req, zero, time.Time{}, time.Time{}, false
	}

	params := s.cfg.Params(utils.NormalizeSymbol(req.Stock), utils.NormalizeSymbol(req.Benchmark))
	if req.RiskFreeRate != nil {
		params.RiskFreeRatePct = *req.RiskFreeRate
	}
	if req.PeriodWeeks != 0 {
		params.PeriodWeeks = req.PeriodWeeks
	}
	if req.LogReturns != nil {
		params.UseLogReturns = *req.LogReturns
	}
	if req.WindowWeeks != 0 {
		params.WindowWeeks = req.WindowWeeks
	}
	if req.StepWeeks != 0 {
		params.StepWeeks = req.StepWeeks
	}

	if params.RiskFreeRatePct < 0 || params.RiskFreeRatePct > 20 {
		writeError(w, http.StatusBadRequest, "riskFreeRate must be between 0 and 20")
		return req, zero, time.Time{}, time.Time{}, false
	}
	if params.PeriodWeeks != 156 && params.PeriodWeeks != 260 {
		writeError(w, http.StatusBadRequest, "periodWeeks must be 156 or 260")
		return req, zero, time.Time{}, time.Time{}, false
	}
	if params.Stock == params.Benchmark {
		writeError(w, http.StatusBadRequest, "stock and benchmark must differ")
		return req, zero, time.Time{}, time.Time{}, false
	}

	to := time.Now().UTC()
	if req.To != "" {
		var err error
		if to, err = utils.ParseFlexibleDate(req.To); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; use YYYY-MM-DD")
			return req, zero, time.Time{}, time.Time{}, false
		}
	}

	// Default lookback: enough daily history to cover the requested weekly
	// horizon, plus slack for holidays and the leading diff week.
	lookbackWeeks := params.PeriodWeeks
	if params.WindowWeeks > lookbackWeeks {
		lookbackWeeks = params.WindowWeeks
	}
	from := to.AddDate(0, 0, -7*(lookbackWeeks+4))
	if req.From != "" {
		var err error
		if from, err = utils.ParseFlexibleDate(req.From); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date; use YYYY-MM-DD")
			return req, zero, time.Time{}, time.Time{}, false
		}
	}
	if !from.Before(to) {
		writeError(w, http.StatusBadRequest, "from must precede to")
		return req, zero, time.Time{}, time.Time{}, false
	}

	return req, params, from, to, true
}

// requestTable resolves the price table for an analyze/rolling request:
// an inline CSV body when one was supplied, otherwise a data source fetch.
// Writes the error response itself on failure.
func (s *Server) requestTable(w http.ResponseWriter, r *http.Request, req AnalyzeRequest, params models.AnalysisParams, from, to time.Time) (*models.PriceTable, bool) {
	if req.CSV != "" {
		table, report, err := dataset.Load(strings.NewReader(req.CSV))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		dataset.Clean(table, report)
		for _, col := range []string{params.Stock, params.Benchmark} {
			if !table.HasColumn(col) {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("csv is missing a %q column", col))
				return nil, false
			}
		}
		return table, true
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	table, err := s.prices.PriceTable(ctx, []string{params.Stock, params.Benchmark}, from, to)
	if err != nil {
		writeFetchError(w, err)
		return nil, false
	}
	return table, true
}

// requestDigest builds a deterministic cache key for a request body.
func requestDigest(kind string, req AnalyzeRequest) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%s:%x", kind, sum)
}

// tableToPayload converts a price table to its JSON form, mapping NaN
// cells to null.
func tableToPayload(table *models.PriceTable) PricesResponse {
	resp := PricesResponse{
		Dates:   make([]string, len(table.Dates)),
		Columns: table.Columns,
		Prices:  make(map[string][]*float64, len(table.Columns)),
	}
	for i, d := range table.Dates {
		resp.Dates[i] = utils.FormatDate(d)
	}
	for _, col := range table.Columns {
		src, _ := table.Column(col)
		cells := make([]*float64, len(src))
		for i, v := range src {
			if !math.IsNaN(v) {
				p := v
				cells[i] = &p
			}
		}
		resp.Prices[col] = cells
	}
	return resp
}

func writeFetchError(w http.ResponseWriter, err error) {
	if errors.Is(err, datasource.ErrSymbolNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrInsufficientData),
		errors.Is(err, analysis.ErrZeroVariance),
		errors.Is(err, analysis.ErrNoAlignedData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
