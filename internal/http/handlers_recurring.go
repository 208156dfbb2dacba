package http

import (
	"net/http"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type recurringRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId,omitempty"`
	Type        string `json:"type"`
	Frequency   string `json:"frequency"`
	NextDueDate string `json:"nextDueDate"`
}

func (req recurringRequest) toDomain(id, userID string) (core.RecurringTemplate, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	nextDue, err := parseDate(req.NextDueDate)
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	return core.RecurringTemplate{
		ID:          id,
		Amount:      amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Type:        core.TransactionType(req.Type),
		Frequency:   core.Frequency(req.Frequency),
		NextDueDate: nextDue,
		UserID:      userID,
	}, nil
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusOK, []recurringResponse{})
		return
	}

	templates, err := s.recurring.List(r.Context(), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	resp := make([]recurringResponse, 0, len(templates))
	for _, rt := range templates {
		resp = append(resp, newRecurringResponse(rt))
	}
	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req recurringRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	rt, err := req.toDomain("", userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if rt.NextDueDate.IsZero() {
		respondError(r.Context(), w, apperr.Validation("nextDueDate is required"))
		return
	}

	created, err := s.recurring.Create(r.Context(), rt)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, newRecurringResponse(created))
}

func (s *Server) handleDueRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusOK, []recurringResponse{})
		return
	}

	due, err := s.recurring.ListDue(r.Context(), userID, time.Now())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	resp := make([]recurringResponse, 0, len(due))
	for _, rt := range due {
		resp = append(resp, newRecurringResponse(rt))
	}
	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	rt, err := s.recurring.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, newRecurringResponse(rt))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req recurringRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	// Merge onto the stored row: the active flag is toggled through its own
	// endpoint and the trigger history is owned by the scheduler.
	rt, err := s.recurring.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	edited, err := req.toDomain(rt.ID, userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	rt.Amount = edited.Amount
	rt.Description = edited.Description
	rt.CategoryID = edited.CategoryID
	rt.Type = edited.Type
	rt.Frequency = edited.Frequency
	if !edited.NextDueDate.IsZero() {
		rt.NextDueDate = edited.NextDueDate
	}

	if err := s.recurring.Update(r.Context(), rt); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, newRecurringResponse(rt))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.recurring.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleToggleRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	active, err := s.recurring.ToggleActive(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]bool{"isActive": active})
}

// handleTriggerRecurring fires a template immediately, advancing its due
// date exactly like the scheduled scan would.
func (s *Server) handleTriggerRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	t, err := s.recurring.CreateNow(r.Context(), r.PathValue("id"), userID, time.Now())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, newTransactionResponse(storage.TransactionWithCategory{Transaction: t}))
}
