package domain

import (
	"context"
	"math"
)

// Product is a single catalog entry. Field order is the export order.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
	CategoryID  int64   `json:"categoryId"`
	ImageURL    string  `json:"imageUrl"`
}

// ProductDraft holds the editable fields of a product.
type ProductDraft struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
	CategoryID  int64   `json:"categoryId"`
	ImageURL    string  `json:"imageUrl"`
}

// Category groups products.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MaxSafeInteger is the largest integer a float64 holds exactly. Ids and
// stock counts above it do not survive a JSON round trip.
const MaxSafeInteger = 1<<53 - 1

// RoundPrice rounds a price to two decimal places.
func RoundPrice(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}

// Collection keys used with a CollectionStore.
const (
	ProductsKey   = "products"
	CategoriesKey = "categories"
	ViewersKey    = "viewers"
)

// ProfileKey returns the collection key holding a user's profile settings.
func ProfileKey(userID string) string {
	return "profile:" + userID
}

// CollectionStore is the port for keyed JSON document persistence.
// Get reports ok=false when nothing is stored under key.
type CollectionStore interface {
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Put(ctx context.Context, key string, payload []byte) error
}

// SeedSource provides the static documents used to initialize empty storage.
type SeedSource interface {
	Products(ctx context.Context) ([]byte, error)
	Categories(ctx context.Context) ([]byte, error)
}
