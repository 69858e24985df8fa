package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"novastore/internal/domain"

	"go.uber.org/zap"
)

// CategoryService owns the category collection.
type CategoryService struct {
	store  domain.CollectionStore
	seeds  domain.SeedSource
	logger *zap.Logger
}

// NewCategoryService creates a CategoryService backed by store and seeded from seeds.
func NewCategoryService(store domain.CollectionStore, seeds domain.SeedSource, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{store: store, seeds: seeds, logger: logger}
}

// CreateCategoryResult reports the category matched or created by Create.
type CreateCategoryResult struct {
	Category domain.Category `json:"category"`
	Created  bool            `json:"created"`
}

// EnsureSeeded returns the stored categories, seeding storage first when no
// valid collection is stored.
func (s *CategoryService) EnsureSeeded(ctx context.Context) ([]domain.Category, error) {
	raw, ok, err := s.store.Get(ctx, domain.CategoriesKey)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	if ok {
		if categories, valid := ParseCategories(raw); valid {
			return categories, nil
		}
		s.logger.Warn("stored categories invalid, reseeding")
	}

	raw, err = s.seeds.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: categories: %v", ErrSeedLoad, err)
	}
	categories, valid := ParseCategories(raw)
	if !valid {
		return nil, fmt.Errorf("%w: invalid categories seed", ErrSeedLoad)
	}
	if err := s.save(ctx, categories); err != nil {
		return nil, err
	}
	s.logger.Info("seeded categories", zap.Int("count", len(categories)))
	return categories, nil
}

// Create finds a category by case-insensitive name or appends a new one
// with id = max(ids) + 1.
func (s *CategoryService) Create(ctx context.Context, name string) (*CreateCategoryResult, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrInvalidCategory
	}

	categories, err := s.EnsureSeeded(ctx)
	if err != nil {
		return nil, err
	}

	var maxID int64
	for _, c := range categories {
		if strings.EqualFold(c.Name, trimmed) {
			return &CreateCategoryResult{Category: c, Created: false}, nil
		}
		maxID = max(maxID, c.ID)
	}

	if maxID >= domain.MaxSafeInteger {
		return nil, fmt.Errorf("%w: no category ids left", ErrInvalidCategory)
	}
	created := domain.Category{ID: maxID + 1, Name: trimmed}
	if err := s.save(ctx, append(categories, created)); err != nil {
		return nil, err
	}
	return &CreateCategoryResult{Category: created, Created: true}, nil
}

// ParseCategories decodes a category document. Every element must be an
// object with a positive integer id and a non-blank name; otherwise the
// whole document is rejected.
func ParseCategories(raw []byte) ([]domain.Category, bool) {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	out := make([]domain.Category, 0, len(items))
	for _, item := range items {
		id, ok := item["id"].(float64)
		if !ok || !isSafeInteger(id) || id <= 0 {
			return nil, false
		}
		name, ok := item["name"].(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, false
		}
		out = append(out, domain.Category{ID: int64(id), Name: name})
	}
	return out, true
}

func (s *CategoryService) save(ctx context.Context, categories []domain.Category) error {
	payload, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if err := s.store.Put(ctx, domain.CategoriesKey, payload); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}
	return nil
}
