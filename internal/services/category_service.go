package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/storage"
)

const (
	categoryCacheSize = 256
	categoryCacheTTL  = 5 * time.Minute
)

// CategoryService manages the shared category taxonomy. Reads by ID go
// through an LRU cache; every write invalidates the entry.
type CategoryService struct {
	store        CategoryStore
	transactions TransactionStore
	cache        *cache.LRUCache[core.Category]
}

func NewCategoryService(store CategoryStore, transactions TransactionStore) *CategoryService {
	return &CategoryService{
		store:        store,
		transactions: transactions,
		cache:        cache.NewLRUCache[core.Category](categoryCacheSize, categoryCacheTTL),
	}
}

// Cache exposes the LRU for registration with the cache manager.
func (s *CategoryService) Cache() *cache.LRUCache[core.Category] {
	return s.cache
}

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*core.Category, error) {
	now := time.Now().UTC()
	category := core.Category{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetCategoryByName(ctx, input.Name); err == nil {
		return nil, ErrCategoryNameTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check category name: %w", err)
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"category_id", category.ID,
		"category_name", category.Name)
	return &category, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*core.Category, error) {
	if cached, ok := s.cache.Get(id); ok {
		return &cached, nil
	}

	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(id, *category)
	return category, nil
}

func (s *CategoryService) GetByName(ctx context.Context, name string) (*core.Category, error) {
	return s.store.GetCategoryByName(ctx, name)
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CategoryService) Search(ctx context.Context, nameFragment string) ([]core.Category, error) {
	return s.store.SearchCategories(ctx, nameFragment)
}

// Update changes a category and rewrites the denormalized name and color
// on every transaction that references it.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*core.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != category.Name {
		if _, err := s.store.GetCategoryByName(ctx, input.Name); err == nil {
			return nil, ErrCategoryNameTaken
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("check category name: %w", err)
		}
	}

	category.Name = input.Name
	category.Description = input.Description
	category.Color = input.Color
	category.UpdatedAt = time.Now().UTC()
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateCategory(ctx, *category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if err := s.transactions.RefreshCategoryDenorm(ctx, *category); err != nil {
		return nil, fmt.Errorf("refresh denormalized category fields: %w", err)
	}

	s.cache.Delete(id)
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.cache.Delete(id)
	slog.InfoContext(ctx, "Category deleted", "category_id", id)
	return nil
}
