package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

const maxBodyBytes = 4 << 20

// HealthResponse is returned by /health
type HealthResponse struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Summarizer string            `json:"summarizer"`
	Checks     map[string]string `json:"checks"`
	Store      *StoreHealth      `json:"store,omitempty"`
}

// StoreHealth summarizes the collections database.
type StoreHealth struct {
	Collections int   `json:"collections"`
	Articles    int   `json:"articles"`
	SizeBytes   int64 `json:"size_bytes"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"cache": "ok"}

	status := s.cache.Status()
	if status.Refilling {
		checks["cache"] = "refilling"
	}

	var storeHealth *StoreHealth
	if s.store == nil {
		checks["store"] = "disabled"
	} else if stats, err := s.store.GetStats(r.Context()); err != nil {
		checks["store"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Uptime: time.Since(s.startedAt).Round(time.Second).String(),
			Checks: checks,
		})
		return
	} else {
		checks["store"] = "ok"
		storeHealth = &StoreHealth{
			Collections: stats.CollectionCount,
			Articles:    stats.ArticleCount,
			SizeBytes:   stats.Size,
		}
	}

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
		Summarizer: s.summarizerStrategy(),
		Checks:     checks,
		Store:      storeHealth,
	})
}

func (s *Server) summarizerStrategy() string {
	if s.summarizer == nil {
		return "none"
	}
	return s.summarizer.Strategy()
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes an error envelope
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"status":  status,
			"message": message,
		},
	})
}

// decodeJSON reads a bounded JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}
