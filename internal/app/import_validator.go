package app

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"novastore/internal/domain"
)

// ImportError names one class of problem found in an import payload.
type ImportError string

const (
	ImportNotArray        ImportError = "not_an_array"
	ImportNotObject       ImportError = "not_an_object"
	ImportInvalidID       ImportError = "invalid_id"
	ImportDuplicateID     ImportError = "duplicate_id"
	ImportInvalidName     ImportError = "invalid_name"
	ImportInvalidPrice    ImportError = "invalid_price"
	ImportInvalidStock    ImportError = "invalid_stock"
	ImportInvalidCategory ImportError = "invalid_category"
	ImportInvalidImageURL ImportError = "invalid_image_url"
)

// ValidationResult is the outcome of ValidateProducts. Data holds one
// normalized product per object element even when Valid is false; callers
// must check Valid before persisting it.
type ValidationResult struct {
	Valid  bool             `json:"valid"`
	Errors []ImportError    `json:"errors"`
	Data   []domain.Product `json:"-"`
}

// DecodePayload parses raw JSON into an untyped value for ValidateProducts.
func DecodePayload(raw []byte) (any, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ValidateProducts checks an untrusted payload against the product schema.
// Errors accumulate across all elements; each kind is reported once, in the
// order first seen.
func ValidateProducts(payload any) ValidationResult {
	items, ok := payload.([]any)
	if !ok {
		return ValidationResult{Errors: []ImportError{ImportNotArray}, Data: []domain.Product{}}
	}

	errs := newErrorSet()
	seen := make(map[float64]struct{}, len(items))
	data := make([]domain.Product, 0, len(items))

	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			errs.add(ImportNotObject)
			continue
		}

		id := toNumber(rec, "id")
		price := toNumber(rec, "price")
		stock := toNumber(rec, "stock")
		categoryID := toNumber(rec, "categoryId")
		name := trimmedString(rec["name"])

		if !isSafeInteger(id) || id <= 0 {
			errs.add(ImportInvalidID)
		}
		if _, dup := seen[id]; dup {
			errs.add(ImportDuplicateID)
		}
		seen[id] = struct{}{}

		if name == "" {
			errs.add(ImportInvalidName)
		}
		if !validPrice(price) {
			errs.add(ImportInvalidPrice)
		}
		if !isSafeInteger(stock) || stock < 0 {
			errs.add(ImportInvalidStock)
		}
		if !isSafeInteger(categoryID) || categoryID <= 0 {
			errs.add(ImportInvalidCategory)
		}

		imageURL := ""
		if v, present := rec["imageUrl"]; present {
			s, isString := v.(string)
			if !isString {
				errs.add(ImportInvalidImageURL)
			}
			imageURL = s
		}

		data = append(data, domain.Product{
			ID:          toInt(id),
			Name:        name,
			Description: trimmedString(rec["description"]),
			Price:       finiteOrZero(domain.RoundPrice(price)),
			Stock:       toInt(stock),
			CategoryID:  toInt(categoryID),
			ImageURL:    imageURL,
		})
	}

	return ValidationResult{
		Valid:  errs.empty(),
		Errors: errs.list(),
		Data:   data,
	}
}

// ExportJSON renders products as a pretty-printed JSON array with a
// two-space indent.
func ExportJSON(products []domain.Product) (string, error) {
	if products == nil {
		products = []domain.Product{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

type errorSet struct {
	seen  map[ImportError]struct{}
	order []ImportError
}

func newErrorSet() *errorSet {
	return &errorSet{seen: make(map[ImportError]struct{})}
}

func (e *errorSet) add(kind ImportError) {
	if _, ok := e.seen[kind]; ok {
		return
	}
	e.seen[kind] = struct{}{}
	e.order = append(e.order, kind)
}

func (e *errorSet) empty() bool { return len(e.order) == 0 }

func (e *errorSet) list() []ImportError {
	if e.order == nil {
		return []ImportError{}
	}
	return e.order
}

// toNumber coerces a field permissively: numbers pass through, numeric
// strings are parsed, blank strings and null are zero, booleans are 0 or 1.
// Missing fields and anything else are NaN.
func toNumber(rec map[string]any, key string) float64 {
	v, ok := rec[key]
	if !ok {
		return math.NaN()
	}
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case bool:
		if n {
			return 1
		}
		return 0
	case nil:
		return 0
	default:
		return math.NaN()
	}
}

func trimmedString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isInteger(f float64) bool {
	return isFinite(f) && f == math.Trunc(f)
}

// isSafeInteger reports whether f is an integer that converts to int64 and
// back to float64 unchanged.
func isSafeInteger(f float64) bool {
	return isInteger(f) && math.Abs(f) <= domain.MaxSafeInteger
}

// validPrice reports whether price is positive both before and after
// rounding to cents.
func validPrice(price float64) bool {
	if !isFinite(price) || price <= 0 {
		return false
	}
	rounded := domain.RoundPrice(price)
	return isFinite(rounded) && rounded > 0
}

func finiteOrZero(f float64) float64 {
	if !isFinite(f) {
		return 0
	}
	return f
}

func toInt(f float64) int64 {
	if !isSafeInteger(f) {
		return 0
	}
	return int64(math.Trunc(f))
}
