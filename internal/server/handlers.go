package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// recentBuildsLimit caps the /api/builds response size.
const recentBuildsLimit = 50

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   version.Version,
		Timestamp: time.Now().UTC(),
	})
}

type buildEntry struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Pages      int       `json:"pages"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	Reason     string    `json:"reason"`
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	builds := []history.Build{}
	if s.store != nil {
		recent, err := s.store.Recent(r.Context(), recentBuildsLimit)
		if err != nil {
			slog.Error("Build history query failed", logfields.Error(err))
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		builds = recent
	}

	entries := make([]buildEntry, 0, len(builds))
	for _, b := range builds {
		entries = append(entries, buildEntry{
			ID:         b.ID,
			StartedAt:  b.StartedAt,
			DurationMS: b.Duration.Milliseconds(),
			Pages:      b.Pages,
			Outcome:    b.Outcome,
			Error:      b.Error,
			Reason:     b.Reason,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Debug("JSON response write failed", logfields.Error(err))
	}
}
