package http

import (
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

type budgetRequest struct {
	CategoryID string `json:"categoryId"`
	Amount     string `json:"amount"`
}

type budgetAmountRequest struct {
	Amount string `json:"amount"`
}

type budgetCreatedResponse struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Amount     string `json:"amount"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusOK, []services.BudgetStatus{})
		return
	}

	budgets, err := s.budgets.ListWithActuals(r.Context(), userID, time.Now())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if budgets == nil {
		budgets = []services.BudgetStatus{}
	}
	respondJSON(r.Context(), w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	created, err := s.budgets.Create(r.Context(), core.Budget{
		CategoryID: req.CategoryID,
		Amount:     amount,
		UserID:     userID,
	})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, budgetCreatedResponse{
		ID:         created.ID,
		CategoryID: created.CategoryID,
		Amount:     created.Amount.String(),
	})
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusOK, services.BudgetSummary{})
		return
	}

	summary, err := s.budgets.GetSummary(r.Context(), userID, time.Now())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, summary)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req budgetAmountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if err := s.budgets.UpdateAmount(r.Context(), r.PathValue("id"), userID, amount); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.budgets.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}
