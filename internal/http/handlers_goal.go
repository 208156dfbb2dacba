package http

import (
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

type goalRequest struct {
	Name         string `json:"name"`
	TargetAmount string `json:"targetAmount"`
	TargetDate   string `json:"targetDate"`
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`
	IsActive     *bool  `json:"isActive,omitempty"`
}

type addFundsRequest struct {
	Amount string `json:"amount"`
}

func (req goalRequest) toDomain(id, userID string) (core.SavingsGoal, error) {
	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	date, err := parseDate(req.TargetDate)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return core.SavingsGoal{
		ID:           id,
		Name:         req.Name,
		TargetAmount: target,
		TargetDate:   date,
		Icon:         req.Icon,
		Color:        req.Color,
		UserID:       userID,
	}, nil
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusOK, []goalResponse{})
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	goals, err := s.goals.List(r.Context(), userID, activeOnly)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	resp := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		resp = append(resp, newGoalResponse(g))
	}
	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	g, err := req.toDomain("", userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	created, err := s.goals.Create(r.Context(), g)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, newGoalResponse(created))
}

func (s *Server) handleGoalSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusOK, services.GoalSummary{})
		return
	}

	summary, err := s.goals.GetSummary(r.Context(), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, summary)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	g, err := s.goals.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, newGoalResponse(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	// Merge onto the stored row: the funding balance is only changed through
	// the add-funds endpoint.
	g, err := s.goals.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	edited, err := req.toDomain(g.ID, userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	g.Name = edited.Name
	g.TargetAmount = edited.TargetAmount
	g.TargetDate = edited.TargetDate
	if edited.Icon != "" {
		g.Icon = edited.Icon
	}
	if edited.Color != "" {
		g.Color = edited.Color
	}
	if req.IsActive != nil {
		g.IsActive = *req.IsActive
	}

	if err := s.goals.Update(r.Context(), g); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, newGoalResponse(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.goals.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAddGoalFunds(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req addFundsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	result, err := s.goals.AddFunds(r.Context(), r.PathValue("id"), userID, amount)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, result)
}
