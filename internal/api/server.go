// Package api exposes the suggestion and portfolio pipelines over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/eddiefleurent/chain_scout/internal/chain"
	"github.com/eddiefleurent/chain_scout/internal/drafts"
	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/models"
	"github.com/eddiefleurent/chain_scout/internal/namecache"
	"github.com/eddiefleurent/chain_scout/internal/portfolio"
	"github.com/eddiefleurent/chain_scout/internal/storage"
	"github.com/eddiefleurent/chain_scout/internal/suggest"
)

// maxUploadBytes bounds one scan request's multipart payload.
const maxUploadBytes = 32 << 20

// Config holds the server's wiring-time settings.
type Config struct {
	Listen    string
	AuthToken string
	// DefaultSelection is the expiration preference used when a request
	// carries none.
	DefaultSelection chain.Selection
	// FallbackDaysAhead is the retry horizon when the selection resolves
	// to nothing.
	FallbackDaysAhead int
	// DefaultCount is how many contracts a suggestion set holds.
	DefaultCount int
}

// Server routes HTTP requests into the suggestion and portfolio pipelines.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	storage storage.Interface
	market  marketdata.Client
	scanner *portfolio.Scanner
	names   *namecache.Cache
	logger  *logrus.Logger
	cfg     Config
	now     func() time.Time
}

// NewServer wires the handlers. The clock is overridable for tests.
func NewServer(cfg Config, store storage.Interface, market marketdata.Client, scanner *portfolio.Scanner, names *namecache.Cache, logger *logrus.Logger) *Server {
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = 5
	}
	if cfg.FallbackDaysAhead <= 0 {
		cfg.FallbackDaysAhead = chain.DefaultDaysAhead
	}
	if !cfg.DefaultSelection.Mode.Valid() {
		cfg.DefaultSelection = chain.DefaultSelection
	}

	s := &Server{
		router:  chi.NewRouter(),
		storage: store,
		market:  market,
		scanner: scanner,
		names:   names,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
	s.setupRoutes()
	return s
}

// WithClock injects the time source used for DTE math.
func (s *Server) WithClock(now func() time.Time) *Server {
	if now != nil {
		s.now = now
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if s.cfg.AuthToken != "" {
		s.router.Use(s.authMiddleware)
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/suggestions/{strategy}", s.handleSuggestions)
	s.router.Post("/api/portfolio/scan", s.handleScan)
	s.router.Get("/api/portfolio/holdings", s.handleGetHoldings)
	s.router.Post("/api/portfolio/holdings", s.handlePromoteHoldings)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != s.cfg.AuthToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start blocks serving HTTP until shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Infof("Starting API server on %s", s.cfg.Listen)
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": s.now().Unix(),
	})
}

// suggestionsResponse wraps one strategy's rows with the request context
// they were computed against.
type suggestionsResponse struct {
	Symbol      string      `json:"symbol"`
	Name        string      `json:"name"`
	Price       float64     `json:"price"`
	Expiration  string      `json:"expiration"`
	Strategy    string      `json:"strategy"`
	Suggestions interface{} `json:"suggestions"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	strategy := chi.URLParam(r, "strategy")
	q := r.URL.Query()

	symbol := q.Get("symbol")
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol query parameter is required")
		return
	}

	count := s.cfg.DefaultCount
	if raw := q.Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = n
	}

	moneyness := defaultMoneyness(strategy)
	if raw := q.Get("moneyness"); raw != "" {
		m, err := models.ParseMoneyness(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		moneyness = m
	}

	sel := s.selectionFromQuery(q.Get("mode"), q.Get("n"), q.Get("days"))

	right, ok := strategyRight(strategy)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown strategy %q", strategy))
		return
	}

	// Price and chain come from independent endpoints; fetch them in
	// parallel and fail the request on the first error.
	var (
		price     float64
		contracts []marketdata.OptionContract
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		p, err := s.market.GetStockPrice(gctx, symbol)
		if err != nil {
			return fmt.Errorf("fetching price: %w", err)
		}
		price = p
		return nil
	})
	g.Go(func() error {
		c, err := s.market.GetOptionChain(gctx, symbol)
		if err != nil {
			return fmt.Errorf("fetching chain: %w", err)
		}
		contracts = c
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).WithField("symbol", symbol).Error("Market data fetch failed")
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	now := s.now()
	expiration, ok := chain.PickExpirationDate(contracts, symbol, sel, s.cfg.FallbackDaysAhead, now)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no usable expiration in chain")
		return
	}

	side := chain.FilterByRight(chain.FilterByExpiration(contracts, symbol, expiration), right)
	selected := suggest.SelectByMoneyness(side, price, right, moneyness, count)

	var rows interface{}
	switch strategy {
	case "covered-call":
		if raw := q.Get("factor"); raw != "" {
			factor, err := strconv.ParseFloat(raw, 64)
			if err != nil || factor <= 0 {
				s.writeError(w, http.StatusBadRequest, "factor must be a positive number")
				return
			}
			row, ok := suggest.BuildCoveredCallFromFactor(side, price, factor, expiration, now)
			if !ok {
				s.writeError(w, http.StatusNotFound, "no call contracts at expiration")
				return
			}
			rows = []suggest.CoveredCall{row}
		} else {
			rows = suggest.BuildCoveredCalls(selected, price, expiration, now)
		}
	case "long-call":
		rows = suggest.BuildLongCalls(selected, price, expiration, now)
	case "long-put":
		rows = suggest.BuildLongPuts(selected, price, expiration, now)
	case "cash-secured-put":
		rows = suggest.BuildCashSecuredPuts(selected, expiration, now)
	}

	name, err := s.names.Name(r.Context(), symbol)
	if err != nil {
		// Display-name resolution is cosmetic; fall back to the symbol.
		s.logger.WithError(err).WithField("symbol", symbol).Debug("Name lookup failed")
		name = symbol
	}

	s.writeJSON(w, http.StatusOK, suggestionsResponse{
		Symbol:      symbol,
		Name:        name,
		Price:       price,
		Expiration:  expiration.Format("2006-01-02"),
		Strategy:    strategy,
		Suggestions: rows,
	})
}

func (s *Server) selectionFromQuery(mode, n, days string) chain.Selection {
	sel := chain.Selection{Mode: chain.Mode(mode)}
	if v, err := strconv.Atoi(n); err == nil {
		sel.Count = v
	}
	if v, err := strconv.Atoi(days); err == nil {
		sel.DaysAhead = v
	}
	return chain.Normalize(sel, s.cfg.DefaultSelection)
}

func strategyRight(strategy string) (models.Right, bool) {
	switch strategy {
	case "covered-call", "long-call":
		return models.RightCall, true
	case "long-put", "cash-secured-put":
		return models.RightPut, true
	default:
		return "", false
	}
}

// Income strategies default to selling out-of-the-money; directional longs
// default to at-the-money.
func defaultMoneyness(strategy string) models.Moneyness {
	switch strategy {
	case "long-call", "long-put":
		return models.MoneynessATM
	default:
		return models.MoneynessOTM
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart payload: "+err.Error())
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["images"]) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one image is required under field 'images'")
		return
	}

	var images []portfolio.Image
	for _, header := range r.MultipartForm.File["images"] {
		f, err := header.Open()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("opening %s: %v", header.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("reading %s: %v", header.Filename, err))
			return
		}
		images = append(images, portfolio.Image{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	// An existing session id makes the scan incremental: new captures
	// merge into the stored draft set instead of starting fresh.
	existing := make(map[string]drafts.Row)
	sessionID := r.FormValue("session_id")
	if sessionID != "" {
		if stored, ok := s.storage.GetDraftSession(sessionID); ok {
			existing = stored
		}
	}

	result, err := s.scanner.Scan(r.Context(), existing, images)
	if err != nil {
		s.logger.WithError(err).Error("Portfolio scan failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessionID != "" {
		result.SessionID = sessionID
	}

	merged := make(map[string]drafts.Row, len(result.Rows))
	for _, row := range result.Rows {
		merged[row.Key()] = row
	}
	if err := s.storage.SaveDraftSession(result.SessionID, merged); err != nil {
		s.logger.WithError(err).Error("Failed to persist draft session")
		s.writeError(w, http.StatusInternalServerError, "persisting draft session failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHoldings(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.storage.GetHoldings())
}

// promoteRequest carries the reviewed rows the user approved.
type promoteRequest struct {
	SessionID string       `json:"session_id,omitempty"`
	Rows      []drafts.Row `json:"rows"`
}

type promoteResponse struct {
	Added    []models.Holding `json:"added"`
	Rejected []string         `json:"rejected,omitempty"`
}

func (s *Server) handlePromoteHoldings(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Rows) == 0 {
		s.writeError(w, http.StatusBadRequest, "rows is required")
		return
	}

	now := s.now()
	resp := promoteResponse{}
	for _, row := range req.Rows {
		if !row.Selected {
			continue
		}
		h, err := drafts.ToHolding(row, now)
		if err != nil {
			resp.Rejected = append(resp.Rejected, fmt.Sprintf("%s: %v", row.Key(), err))
			continue
		}
		if name, err := s.names.Name(r.Context(), h.Ticker); err == nil {
			h.Name = name
		}
		if err := s.storage.AddHolding(h); err != nil {
			s.logger.WithError(err).WithField("ticker", h.Ticker).Error("Failed to persist holding")
			s.writeError(w, http.StatusInternalServerError, "persisting holding failed")
			return
		}
		resp.Added = append(resp.Added, h)
	}

	if req.SessionID != "" {
		if err := s.storage.DeleteDraftSession(req.SessionID); err != nil && err != storage.ErrSessionNotFound {
			s.logger.WithError(err).Warn("Failed to delete promoted draft session")
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}
