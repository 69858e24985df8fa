// Package seed provides the static documents used to initialize empty
// catalog storage.
package seed

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"novastore/internal/domain"
)

// Seed document file names.
const (
	ProductsFile   = "products.seed.json"
	CategoriesFile = "categories.seed.json"
)

//go:embed data/*.json
var embedded embed.FS

// Source reads seed documents from a file system.
type Source struct {
	fsys fs.FS
}

var _ domain.SeedSource = (*Source)(nil)

// Embedded returns the seed documents compiled into the binary.
func Embedded() *Source {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return &Source{fsys: sub}
}

// Dir returns a source reading seed documents from dir.
func Dir(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("seed dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("seed dir: %s is not a directory", dir)
	}
	return &Source{fsys: os.DirFS(filepath.Clean(dir))}, nil
}

// FromFS returns a source reading seed documents from fsys.
func FromFS(fsys fs.FS) *Source {
	return &Source{fsys: fsys}
}

// Products returns the product seed document.
func (s *Source) Products(ctx context.Context) ([]byte, error) {
	return s.read(ctx, ProductsFile)
}

// Categories returns the category seed document.
func (s *Source) Categories(ctx context.Context) ([]byte, error) {
	return s.read(ctx, CategoriesFile)
}

func (s *Source) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", name, err)
	}
	return data, nil
}
