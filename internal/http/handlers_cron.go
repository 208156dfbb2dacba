package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/apperr"
)

type cronResponse struct {
	Success      bool     `json:"success"`
	CreatedCount int      `json:"createdCount"`
	FailedIDs    []string `json:"failedIds,omitempty"`
}

// handleCronRecurring runs one due-scan pass across all users. It is meant
// to be hit by an external scheduler; when a cron token is configured the
// caller must present it as a bearer token.
func (s *Server) handleCronRecurring(w http.ResponseWriter, r *http.Request) {
	if s.cronToken != "" {
		presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(s.cronToken)) != 1 {
			respondError(r.Context(), w, apperr.Unauthorized("invalid cron token"))
			return
		}
	}

	result, err := s.recurring.ProcessDue(r.Context(), time.Now())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	slog.InfoContext(r.Context(), "Due-scan pass completed",
		"created", result.Created, "failed", len(result.FailedIDs))

	respondJSON(r.Context(), w, http.StatusOK, cronResponse{
		Success:      true,
		CreatedCount: result.Created,
		FailedIDs:    result.FailedIDs,
	})
}
