package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/elonfeng/kwradar/internal/metrics"
	"github.com/elonfeng/kwradar/internal/store"
	"github.com/elonfeng/kwradar/pkg/lifecycle"
	"github.com/elonfeng/kwradar/pkg/radar"
	"github.com/elonfeng/kwradar/pkg/source"
)

// maxUploadBytes caps a CSV import body.
const maxUploadBytes = 32 << 20

// Server provides the HTTP API.
type Server struct {
	store    store.Store
	analyzer *radar.Analyzer
	filter   *source.Filter
	metrics  *metrics.Metrics
	logger   *zap.Logger
	port     int
}

// New creates a new HTTP server. filter and m may be nil.
func New(s store.Store, analyzer *radar.Analyzer, filter *source.Filter, m *metrics.Metrics, logger *zap.Logger, port int) *Server {
	if port == 0 {
		port = 8080
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:    s,
		analyzer: analyzer,
		filter:   filter,
		metrics:  m,
		logger:   logger,
		port:     port,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/keywords", s.handleKeywords)
	mux.HandleFunc("/api/v1/strategies", s.handleStrategies)
	mux.HandleFunc("/api/v1/categories", s.handleCategories)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// ListenAndServe starts the HTTP server and shuts it down when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listKeywords(w, r)
	case http.MethodPost:
		s.importKeywords(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listKeywords(w http.ResponseWriter, r *http.Request) {
	var opts store.ListOpts
	if name := r.URL.Query().Get("category"); name != "" {
		c, ok := lifecycle.ParseCategory(name)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", name))
			return
		}
		opts.Category = c
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	keywords, err := s.store.ListKeywords(r.Context(), opts)
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  keywords,
		"count": len(keywords),
	})
}

func (s *Server) importKeywords(w http.ResponseWriter, r *http.Request) {
	records, err := source.Parse(http.MaxBytesReader(w, r.Body, maxUploadBytes), s.filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	replace, _ := strconv.ParseBool(r.URL.Query().Get("replace"))
	n, err := s.analyzer.Import(r.Context(), records, replace)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.KeywordsImported.Add(float64(n))
	}
	s.logger.Info("keywords imported", zap.Int("count", n), zap.Bool("replace", replace))

	writeJSON(w, http.StatusOK, map[string]any{"imported": n})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	results, err := s.analyzer.Rank(r.Context(), q.Get("brand"), q.Get("strategy"))
	if errors.Is(err, radar.ErrUnknownStrategy) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  results,
		"count": len(results),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mode := radar.YoYAuto
	if v := r.URL.Query().Get("yoy"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "yoy must be true or false")
			return
		}
		mode = radar.YoYOff
		if on {
			mode = radar.YoYOn
		}
	}

	// Only the auto rule set is persisted; forced modes are a what-if view.
	analyze := s.analyzer.Analyze
	if mode != radar.YoYAuto {
		analyze = s.analyzer.Classify
	}
	analysis, err := analyze(r.Context(), mode)
	if err != nil {
		s.internalError(w, err)
		return
	}

	type categoryInfo struct {
		Category    lifecycle.Category `json:"category"`
		Description string             `json:"description"`
		Count       int                `json:"count"`
	}
	infos := make([]categoryInfo, len(analysis.Counts))
	for i, cc := range analysis.Counts {
		infos[i] = categoryInfo{
			Category:    cc.Category,
			Description: cc.Category.Description(),
			Count:       cc.Count,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":         infos,
		"count":        analysis.KeywordCount,
		"has_yoy_data": analysis.HasYoYData,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	runs, err := s.store.ListRuns(r.Context(), 20)
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  runs,
		"count": len(runs),
	})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
