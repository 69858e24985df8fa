package app

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"novastore/internal/domain"

	"go.uber.org/zap"
)

// CatalogService owns the product collection. Every mutation is a
// read-modify-write of the whole stored document.
type CatalogService struct {
	store  domain.CollectionStore
	seeds  domain.SeedSource
	logger *zap.Logger
}

// NewCatalogService creates a CatalogService backed by store and seeded from seeds.
func NewCatalogService(store domain.CollectionStore, seeds domain.SeedSource, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{store: store, seeds: seeds, logger: logger}
}

// EnsureSeeded returns the stored products, seeding storage first when no
// valid collection is stored.
func (s *CatalogService) EnsureSeeded(ctx context.Context) ([]domain.Product, error) {
	existing, ok, err := s.readStored(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return existing, nil
	}

	raw, err := s.seeds.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: products: %v", ErrSeedLoad, err)
	}
	payload, err := DecodePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: products: %v", ErrSeedLoad, err)
	}
	result := ValidateProducts(payload)
	if !result.Valid {
		return nil, fmt.Errorf("%w: invalid products seed %v", ErrSeedLoad, result.Errors)
	}

	if err := s.save(ctx, result.Data); err != nil {
		return nil, err
	}
	s.logger.Info("seeded products", zap.Int("count", len(result.Data)))
	return result.Data, nil
}

// List returns the products in insertion order.
func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.EnsureSeeded(ctx)
}

// Get returns a single product.
func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	products, err := s.EnsureSeeded(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a product built from draft with id = max(ids) + 1.
func (s *CatalogService) Create(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	if err := ValidateDraft(draft); err != nil {
		return domain.Product{}, err
	}
	products, err := s.EnsureSeeded(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	var maxID int64
	for _, p := range products {
		maxID = max(maxID, p.ID)
	}
	if maxID >= domain.MaxSafeInteger {
		return domain.Product{}, fmt.Errorf("%w: no product ids left", ErrInvalidDraft)
	}
	created := applyDraft(domain.Product{ID: maxID + 1}, draft)

	if err := s.save(ctx, append(products, created)); err != nil {
		return domain.Product{}, err
	}
	return created, nil
}

// Update replaces every editable field of product id. It reports false when
// no such product exists.
func (s *CatalogService) Update(ctx context.Context, id int64, draft domain.ProductDraft) (bool, error) {
	if err := ValidateDraft(draft); err != nil {
		return false, err
	}
	products, err := s.EnsureSeeded(ctx)
	if err != nil {
		return false, err
	}

	idx := slices.IndexFunc(products, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		return false, nil
	}
	products[idx] = applyDraft(products[idx], draft)

	if err := s.save(ctx, products); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes product id. It reports false, and writes nothing, when no
// such product exists.
func (s *CatalogService) Delete(ctx context.Context, id int64) (bool, error) {
	products, err := s.EnsureSeeded(ctx)
	if err != nil {
		return false, err
	}

	remaining := slices.DeleteFunc(slices.Clone(products), func(p domain.Product) bool { return p.ID == id })
	if len(remaining) == len(products) {
		return false, nil
	}

	if err := s.save(ctx, remaining); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceAll overwrites the stored collection. It does not validate;
// callers must have run ValidateProducts first.
func (s *CatalogService) ReplaceAll(ctx context.Context, products []domain.Product) error {
	return s.save(ctx, products)
}

// Import validates raw JSON and, only when it is fully valid, replaces the
// stored collection with it. Invalid payloads leave storage untouched.
func (s *CatalogService) Import(ctx context.Context, raw []byte) (ValidationResult, error) {
	payload, err := DecodePayload(raw)
	if err != nil {
		return ValidationResult{Errors: []ImportError{ImportNotArray}}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	result := ValidateProducts(payload)
	if !result.Valid {
		return result, ErrInvalidImport
	}
	if err := s.ReplaceAll(ctx, result.Data); err != nil {
		return result, err
	}
	s.logger.Info("imported products", zap.Int("count", len(result.Data)))
	return result, nil
}

// Export returns the stored collection rendered by ExportJSON.
func (s *CatalogService) Export(ctx context.Context) (string, error) {
	products, err := s.EnsureSeeded(ctx)
	if err != nil {
		return "", err
	}
	return ExportJSON(products)
}

// Sort orders accepted by Query.
const (
	SortNameAsc   = "name-asc"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortStockAsc  = "stock-asc"
	SortStockDesc = "stock-desc"
)

// ProductQuery filters and orders a product listing.
type ProductQuery struct {
	Search     string
	CategoryID int64
	Sort       string
}

// ValidSort reports whether sort is a known order.
func ValidSort(sort string) bool {
	switch sort {
	case SortNameAsc, SortPriceAsc, SortPriceDesc, SortStockAsc, SortStockDesc:
		return true
	}
	return false
}

// Query lists products matching q. Search is a case-insensitive name
// substring; CategoryID zero matches every category.
func (s *CatalogService) Query(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	products, err := s.EnsureSeeded(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if q.CategoryID != 0 && p.CategoryID != q.CategoryID {
			continue
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b domain.Product) int {
		switch q.Sort {
		case SortPriceAsc:
			return cmp.Compare(a.Price, b.Price)
		case SortPriceDesc:
			return cmp.Compare(b.Price, a.Price)
		case SortStockAsc:
			return cmp.Compare(a.Stock, b.Stock)
		case SortStockDesc:
			return cmp.Compare(b.Stock, a.Stock)
		default:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	})
	return out, nil
}

// ValidateDraft checks the product form fields.
func ValidateDraft(d domain.ProductDraft) error {
	var problems []string
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !validPrice(d.Price) {
		problems = append(problems, "price must be > 0")
	}
	if d.Stock < 0 || d.Stock > domain.MaxSafeInteger {
		problems = append(problems, "stock out of range")
	}
	if d.CategoryID <= 0 || d.CategoryID > domain.MaxSafeInteger {
		problems = append(problems, "categoryId out of range")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDraft, strings.Join(problems, "; "))
	}
	return nil
}

func applyDraft(p domain.Product, d domain.ProductDraft) domain.Product {
	p.Name = strings.TrimSpace(d.Name)
	p.Description = strings.TrimSpace(d.Description)
	p.Price = domain.RoundPrice(d.Price)
	p.Stock = d.Stock
	p.CategoryID = d.CategoryID
	p.ImageURL = strings.TrimSpace(d.ImageURL)
	return p
}

// readStored loads the stored collection. A corrupt or schema-invalid
// document is reported as absent so the caller re-seeds.
func (s *CatalogService) readStored(ctx context.Context) ([]domain.Product, bool, error) {
	raw, ok, err := s.store.Get(ctx, domain.ProductsKey)
	if err != nil {
		return nil, false, fmt.Errorf("read products: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	payload, err := DecodePayload(raw)
	if err != nil {
		s.logger.Warn("stored products unreadable, reseeding", zap.Error(err))
		return nil, false, nil
	}
	result := ValidateProducts(payload)
	if !result.Valid {
		s.logger.Warn("stored products invalid, reseeding", zap.Any("errors", result.Errors))
		return nil, false, nil
	}
	return result.Data, true, nil
}

func (s *CatalogService) save(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	if err := s.store.Put(ctx, domain.ProductsKey, payload); err != nil {
		return fmt.Errorf("write products: %w", err)
	}
	return nil
}
