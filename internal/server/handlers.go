package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/tbills/internal/domain"
)

// defaultSMAPeriod is the moving-average window applied to chart data when
// the request does not specify one.
const defaultSMAPeriod = 8

// handleHealth handles basic liveness checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "tbills",
	})
}

// handleBillCharts returns chart data for all five term lengths.
// Optional ?sma=N overrides the moving-average window; sma=0 disables it.
func (s *Server) handleBillCharts(w http.ResponseWriter, r *http.Request) {
	smaPeriod := defaultSMAPeriod
	if raw := r.URL.Query().Get("sma"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "sma must be a non-negative integer")
			return
		}
		smaPeriod = parsed
	}

	termCharts, err := s.charts.BuildCharts(time.Now(), smaPeriod)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to build bill charts")
		s.writeError(w, http.StatusBadGateway, "failed to build chart data")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"charts": termCharts})
}

// handleBillChart returns chart data for a single term length.
func (s *Server) handleBillChart(w http.ResponseWriter, r *http.Request) {
	term := domain.TermLength(chi.URLParam(r, "term"))
	if !term.Valid() {
		s.writeError(w, http.StatusBadRequest, "unknown term length")
		return
	}

	termCharts, err := s.charts.BuildCharts(time.Now(), defaultSMAPeriod)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to build bill chart")
		s.writeError(w, http.StatusBadGateway, "failed to build chart data")
		return
	}

	for _, chart := range termCharts {
		if chart.Term == string(term) {
			s.writeJSON(w, http.StatusOK, chart)
			return
		}
	}

	s.writeError(w, http.StatusNotFound, "no chart data for term")
}

// handleRefresh forces a full five-term cache refresh regardless of
// freshness.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	resolved, err := s.manager.Refresh(time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("Forced refresh failed")
		s.writeError(w, http.StatusBadGateway, "refresh failed")
		return
	}

	counts := make(map[string]int, len(resolved))
	for term, series := range resolved {
		counts[string(term)] = len(series)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "refreshed",
		"points": counts,
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
