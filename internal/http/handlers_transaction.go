package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

const defaultSeriesMonths = 6

type transactionRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CategoryID  string `json:"categoryId,omitempty"`
	Type        string `json:"type"`
}

func (req transactionRequest) toDomain(id, userID string) (core.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          id,
		Amount:      amount,
		Description: req.Description,
		Date:        date,
		CategoryID:  req.CategoryID,
		Type:        core.TransactionType(req.Type),
		UserID:      userID,
	}, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusOK, []transactionResponse{})
		return
	}

	filter, err := parseTransactionFilter(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	items, err := s.transactions.List(r.Context(), userID, filter)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	resp := make([]transactionResponse, 0, len(items))
	for _, t := range items {
		resp = append(resp, newTransactionResponse(t))
	}
	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	q := r.URL.Query()
	filter := storage.TransactionFilter{
		CategoryID: strings.TrimSpace(q.Get("categoryId")),
	}

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t := core.TransactionType(v)
		if err := t.Validate(); err != nil {
			return storage.TransactionFilter{}, apperr.ValidationFrom(err)
		}
		filter.Type = t
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return storage.TransactionFilter{}, apperr.Validation("invalid limit")
		}
		filter.Limit = n
	}
	var err error
	if filter.From, err = parseDate(q.Get("from")); err != nil {
		return storage.TransactionFilter{}, err
	}
	if filter.To, err = parseDate(q.Get("to")); err != nil {
		return storage.TransactionFilter{}, err
	}
	return filter, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	t, err := req.toDomain("", userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, newTransactionResponse(storage.TransactionWithCategory{Transaction: created}))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	t, err := s.transactions.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, newTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	t, err := req.toDomain(r.PathValue("id"), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if err := s.transactions.Update(r.Context(), t); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, newTransactionResponse(storage.TransactionWithCategory{Transaction: t}))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.transactions.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusOK, services.Summary{})
		return
	}

	summary, err := s.transactions.GetSummary(r.Context(), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, summary)
}

func (s *Server) handleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusOK, []services.MonthPoint{})
		return
	}

	months := defaultSeriesMonths
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 36 {
			respondError(r.Context(), w, apperr.Validation("invalid months: expected 1-36"))
			return
		}
		months = n
	}

	series, err := s.transactions.MonthlySeries(r.Context(), userID, months, time.Now())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, series)
}
