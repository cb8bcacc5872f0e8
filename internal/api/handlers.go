package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/sitesimilarity/internal/domain"
)

type progressResponse struct {
	domain.RunSummary
	Running    bool  `json:"running"`
	Fetches    int64 `json:"fetches"`
	CachedURLs int   `json:"cached_urls"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, progressResponse{
		RunSummary: s.engine.Progress(),
		Running:    s.engine.Running(),
		Fetches:    s.cache.Fetches(),
		CachedURLs: s.cache.Len(),
	})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, s.recorder.Matches())
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"engine": "healthy"}
	isHealthy := true
	for name, dep := range s.deps {
		if err := dep.Ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			isHealthy = false
			s.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !isHealthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
