package api

import (
	"net/http"

	"github.com/nerrad567/sparky-core/internal/diagnostics"
)

// handleListDiagnostics returns the retained client failure reports.
func (s *Server) handleListDiagnostics(w http.ResponseWriter, _ *http.Request) {
	if s.collector == nil {
		writeJSON(w, http.StatusOK, map[string]any{"reports": []diagnostics.Report{}, "count": 0, "total": 0})
		return
	}

	reports := s.collector.Reports()
	writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
		"total":   s.collector.Total(),
	})
}

// handleClearDiagnostics drops the retained reports.
func (s *Server) handleClearDiagnostics(w http.ResponseWriter, r *http.Request) {
	if s.collector != nil {
		s.collector.Reset()
	}
	s.logger.Info("diagnostics cleared", "subject", r.Context().Value(ctxKeySubject))
	w.WriteHeader(http.StatusNoContent)
}

// handlePurgeCache empties the response cache so the next reads go live.
func (s *Server) handlePurgeCache(w http.ResponseWriter, r *http.Request) {
	if err := s.client.Store().Purge(r.Context()); err != nil {
		s.logger.Error("cache purge failed", "error", err)
		writeInternalError(w, "failed to purge cache")
		return
	}
	s.logger.Info("response cache purged", "subject", r.Context().Value(ctxKeySubject))
	w.WriteHeader(http.StatusNoContent)
}
