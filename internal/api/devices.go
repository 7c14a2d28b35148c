package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// maxCacheSeconds caps the ?cache query parameter at one week.
const maxCacheSeconds = 7 * 24 * 60 * 60

// clientResponse is the success body of the device endpoints.
type clientResponse struct {
	Data   json.RawMessage `json:"data"`
	Cached bool            `json:"cached"`
}

// parseCacheSeconds reads the optional ?cache=N parameter. Absent means 0,
// which always fetches live.
func parseCacheSeconds(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("cache")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > maxCacheSeconds {
		return 0, false
	}
	return n, true
}

// handleListDevices returns the device listing.
//
// Query parameters:
//   - cache: seconds a cached listing may be reused (default 0)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	cacheSeconds, ok := parseCacheSeconds(r)
	if !ok {
		writeBadRequest(w, "cache must be a whole number of seconds between 0 and 604800")
		return
	}

	res := s.client.ListDevices(r.Context(), cacheSeconds)
	if res.Err != nil {
		writeClientError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, clientResponse{Data: res.Raw, Cached: res.Cached})
}

// handleGetDevice returns one device's detail.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	cacheSeconds, ok := parseCacheSeconds(r)
	if !ok {
		writeBadRequest(w, "cache must be a whole number of seconds between 0 and 604800")
		return
	}

	res := s.client.GetDevice(r.Context(), chi.URLParam(r, "id"), cacheSeconds)
	if res.Err != nil {
		writeClientError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, clientResponse{Data: res.Raw, Cached: res.Cached})
}

// handleGetVariable returns the current value of a device variable.
func (s *Server) handleGetVariable(w http.ResponseWriter, r *http.Request) {
	cacheSeconds, ok := parseCacheSeconds(r)
	if !ok {
		writeBadRequest(w, "cache must be a whole number of seconds between 0 and 604800")
		return
	}

	res := s.client.GetVariable(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"), cacheSeconds)
	if res.Err != nil {
		writeClientError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, clientResponse{Data: res.Raw, Cached: res.Cached})
}
