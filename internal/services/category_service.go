package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/apperr"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// CategoryStore is the storage surface the category service needs.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) error
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	GetCategory(ctx context.Context, id, userID string) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id, userID string) error
}

type CategoryService struct {
	store CategoryStore
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	if err := c.Validate(); err != nil {
		return core.Category{}, apperr.ValidationFrom(err)
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name)
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]core.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

func (s *CategoryService) Get(ctx context.Context, id, userID string) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Category{}, apperr.NotFound("category not found")
	}
	return c, err
}

func (s *CategoryService) Update(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return apperr.ValidationFrom(err)
	}
	err := s.store.UpdateCategory(ctx, c)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("category not found")
	}
	return err
}

// Delete removes a category. Transactions and templates that referenced it
// survive with no category; budgets on it are removed with it.
func (s *CategoryService) Delete(ctx context.Context, id, userID string) error {
	err := s.store.DeleteCategory(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("category not found")
	}
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}
