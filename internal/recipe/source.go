// Package recipe provides recipe store implementations: a JSON-file backed
// catalog for real use and an in-memory seeded one for offline runs and
// tests.
package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/logger"
)

// catalog mirrors the on-disk layout: a single document with a top-level
// "recipes" array.
type catalog struct {
	Recipes []domain.Recipe `json:"recipes"`
}

// Source is a read-only recipe store loaded from a JSON file. The store is
// immutable after construction, so lookups need no locking.
type Source struct {
	log     *logger.Logger
	order   []string
	recipes map[string]*domain.Recipe
}

var _ domain.RecipeSource = (*Source)(nil)

// NewSource loads the catalog at path. A missing or malformed file yields
// an empty source plus the load error: the caller can log it and keep
// running, and every lookup then reports domain.ErrNotFound.
func NewSource(path string, log *logger.Logger) (*Source, error) {
	s := &Source{
		log:     log,
		recipes: make(map[string]*domain.Recipe),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading recipe catalog: %w", err)
	}

	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return s, fmt.Errorf("parsing recipe catalog %s: %w", path, err)
	}

	for i := range c.Recipes {
		r := &c.Recipes[i]
		if r.ID == "" {
			log.Warn("recipe: skipping catalog entry %d with no id", i)
			continue
		}
		normalize(r)
		if _, dup := s.recipes[r.ID]; dup {
			log.Warn("recipe: duplicate id %q in catalog, keeping the first", r.ID)
			continue
		}
		s.recipes[r.ID] = r
		s.order = append(s.order, r.ID)
	}

	log.Info("recipe: loaded %d recipes from %s", len(s.order), path)
	return s, nil
}

// normalize fills defaults for optional fields so downstream code never
// sees a half-empty recipe.
func normalize(r *domain.Recipe) {
	if r.ServingSize == "" {
		r.ServingSize = "4 people"
	}
	if r.Difficulty == "" {
		r.Difficulty = "medium"
	}
	for i := range r.Steps {
		if r.Steps[i].Number == 0 {
			r.Steps[i].Number = i + 1
		}
	}
}

// List returns every recipe in catalog order.
func (s *Source) List(ctx context.Context) ([]domain.Recipe, error) {
	out := make([]domain.Recipe, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.recipes[id])
	}
	return out, nil
}

// Get returns the recipe with the given id, or domain.ErrNotFound.
func (s *Source) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	r, ok := s.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

// Search returns recipes whose name, category, or country contains the
// query, case-insensitively, in catalog order.
func (s *Source) Search(ctx context.Context, query string) ([]domain.Recipe, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.List(ctx)
	}
	var out []domain.Recipe
	for _, id := range s.order {
		r := s.recipes[id]
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Category), q) ||
			strings.Contains(strings.ToLower(r.Origin.Country), q) {
			out = append(out, *r)
		}
	}
	return out, nil
}
