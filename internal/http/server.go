// Package http exposes the JSON API surface.
package http

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Service interfaces consumed by the handlers. The concrete implementations
// live in internal/services; tests substitute fakes.

type CategoryService interface {
	Create(ctx context.Context, c core.Category) (core.Category, error)
	List(ctx context.Context, userID string) ([]core.Category, error)
	Get(ctx context.Context, id, userID string) (core.Category, error)
	Update(ctx context.Context, c core.Category) error
	Delete(ctx context.Context, id, userID string) error
}

type TransactionService interface {
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
	List(ctx context.Context, userID string, f storage.TransactionFilter) ([]storage.TransactionWithCategory, error)
	Get(ctx context.Context, id, userID string) (storage.TransactionWithCategory, error)
	Update(ctx context.Context, t core.Transaction) error
	Delete(ctx context.Context, id, userID string) error
	GetSummary(ctx context.Context, userID string) (services.Summary, error)
	MonthlySeries(ctx context.Context, userID string, months int, now time.Time) ([]services.MonthPoint, error)
}

type BudgetService interface {
	Create(ctx context.Context, b core.Budget) (core.Budget, error)
	ListWithActuals(ctx context.Context, userID string, now time.Time) ([]services.BudgetStatus, error)
	GetSummary(ctx context.Context, userID string, now time.Time) (services.BudgetSummary, error)
	UpdateAmount(ctx context.Context, id, userID string, amount decimal.Decimal) error
	Delete(ctx context.Context, id, userID string) error
}

type GoalService interface {
	Create(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
	List(ctx context.Context, userID string, activeOnly bool) ([]core.SavingsGoal, error)
	Get(ctx context.Context, id, userID string) (core.SavingsGoal, error)
	Update(ctx context.Context, g core.SavingsGoal) error
	Delete(ctx context.Context, id, userID string) error
	AddFunds(ctx context.Context, id, userID string, amount decimal.Decimal) (services.FundingResult, error)
	GetSummary(ctx context.Context, userID string) (services.GoalSummary, error)
}

type RecurringService interface {
	Create(ctx context.Context, rt core.RecurringTemplate) (core.RecurringTemplate, error)
	List(ctx context.Context, userID string) ([]core.RecurringTemplate, error)
	Get(ctx context.Context, id, userID string) (core.RecurringTemplate, error)
	Update(ctx context.Context, rt core.RecurringTemplate) error
	Delete(ctx context.Context, id, userID string) error
	ToggleActive(ctx context.Context, id, userID string) (bool, error)
	ListDue(ctx context.Context, userID string, now time.Time) ([]core.RecurringTemplate, error)
	CreateNow(ctx context.Context, id, userID string, now time.Time) (core.Transaction, error)
	ProcessDue(ctx context.Context, now time.Time) (services.ScanResult, error)
}

type ReceiptService interface {
	Upload(ctx context.Context, transactionID, userID, fileName, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, transactionID, userID string) error
	PresignedURL(ctx context.Context, transactionID, userID string) (string, error)
}

// Pinger reports storage health for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the server needs.
type Deps struct {
	Categories   CategoryService
	Transactions TransactionService
	Budgets      BudgetService
	Goals        GoalService
	Recurring    RecurringService
	Receipts     ReceiptService
	Sessions     auth.SessionStore
	Pinger       Pinger

	// Shared secret for /api/cron/recurring; empty disables the check.
	CronToken string
}

type Server struct {
	http.Server

	categories   CategoryService
	transactions TransactionService
	budgets      BudgetService
	goals        GoalService
	recurring    RecurringService
	receipts     ReceiptService
	pinger       Pinger
	cronToken    string

	rateLimiter  *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		categories:   deps.Categories,
		transactions: deps.Transactions,
		budgets:      deps.Budgets,
		goals:        deps.Goals,
		recurring:    deps.Recurring,
		receipts:     deps.Receipts,
		pinger:       deps.Pinger,
		cronToken:    deps.CronToken,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/summary", s.handleTransactionSummary)
	mux.HandleFunc("GET /api/transactions/monthly", s.handleMonthlySeries)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/transactions/{id}/receipt", s.handleUploadReceipt)
	mux.HandleFunc("GET /api/transactions/{id}/receipt", s.handleReceiptURL)
	mux.HandleFunc("DELETE /api/transactions/{id}/receipt", s.handleDeleteReceipt)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /api/budgets/summary", s.handleBudgetSummary)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals/summary", s.handleGoalSummary)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("POST /api/goals/{id}/funds", s.handleAddGoalFunds)

	mux.HandleFunc("GET /api/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /api/recurring", s.handleCreateRecurring)
	mux.HandleFunc("GET /api/recurring/due", s.handleDueRecurring)
	mux.HandleFunc("GET /api/recurring/{id}", s.handleGetRecurring)
	mux.HandleFunc("PUT /api/recurring/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRecurring)
	mux.HandleFunc("POST /api/recurring/{id}/toggle", s.handleToggleRecurring)
	mux.HandleFunc("POST /api/recurring/{id}/trigger", s.handleTriggerRecurring)

	mux.HandleFunc("GET /api/cron/recurring", s.handleCronRecurring)

	tracer := trace.NewMiddleware(extractClientIP)
	sessions := auth.NewMiddleware(deps.Sessions)

	var handler http.Handler = mux
	handler = s.limitMutations(handler)
	handler = sessions.Middleware(handler)
	handler = securityHeaders(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Shutdown stops the server and its rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// limitMutations rate-limits write traffic per client IP. Reads pass through.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !s.rateLimiter.Allow(extractClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// extractClientIP considers proxy headers before the socket address.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			respondError(r.Context(), w, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
