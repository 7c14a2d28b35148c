package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sparky-core/internal/spark"
)

// sparkView is a configured spark with its readable cache duration.
type sparkView struct {
	spark.Spark
	CacheLabel string `json:"cache_label"`
}

func newSparkView(sp spark.Spark) sparkView {
	return sparkView{Spark: sp, CacheLabel: spark.CacheLabel(sp.CacheSeconds)}
}

// handleListSparks returns every configured spark.
func (s *Server) handleListSparks(w http.ResponseWriter, _ *http.Request) {
	list := s.sparks.Registry().List()
	views := make([]sparkView, 0, len(list))
	for _, sp := range list {
		views = append(views, newSparkView(sp))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sparks": views, "count": len(views)})
}

// handleCacheOptions returns the selectable cache durations.
func (s *Server) handleCacheOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"options": spark.CacheOptions()})
}

// handleGetSpark returns one configured spark.
func (s *Server) handleGetSpark(w http.ResponseWriter, r *http.Request) {
	sp, err := s.sparks.Registry().Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeSparkError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSparkView(sp))
}

// handleSparkValue renders the spark's variable. Read failures are part of
// the rendered text, so this only fails for an unknown spark.
func (s *Server) handleSparkValue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	value, err := s.sparks.Value(r.Context(), id)
	if err != nil {
		s.writeSparkError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "value": value})
}

// handleSparkStatus renders whether the spark's device is online.
func (s *Server) handleSparkStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := s.sparks.Status(r.Context(), id)
	if err != nil {
		s.writeSparkError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": status})
}

// handleSparkSnapshot compares a live read with the cached one.
func (s *Server) handleSparkSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sparks.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeSparkError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) writeSparkError(w http.ResponseWriter, err error) {
	if errors.Is(err, spark.ErrSparkNotFound) {
		writeNotFound(w, "spark not found")
		return
	}
	s.logger.Error("spark lookup failed", "error", err)
	writeInternalError(w, "failed to read spark")
}
