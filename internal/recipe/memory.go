package recipe

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/demilade/souschef/internal/domain"
)

// MemorySource is an in-memory recipe store. It ships with a couple of
// seeded dishes so the assistant works out of the box without a data
// directory, and tests use it to inject fixtures.
type MemorySource struct {
	mu      sync.RWMutex
	order   []string
	recipes map[string]*domain.Recipe
}

var _ domain.RecipeSource = (*MemorySource)(nil)

// NewMemorySource creates a store holding the given recipes, in order.
// With no arguments it is seeded with the built-in dishes.
func NewMemorySource(recipes ...domain.Recipe) *MemorySource {
	s := &MemorySource{recipes: make(map[string]*domain.Recipe)}
	if len(recipes) == 0 {
		recipes = seedRecipes()
	}
	for i := range recipes {
		r := recipes[i]
		normalize(&r)
		s.recipes[r.ID] = &r
		s.order = append(s.order, r.ID)
	}
	return s
}

// Add inserts or replaces a recipe.
func (s *MemorySource) Add(r domain.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.recipes[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	normalize(&r)
	s.recipes[r.ID] = &r
}

// List returns every recipe in insertion order.
func (s *MemorySource) List(ctx context.Context) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Recipe, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.recipes[id])
	}
	return out, nil
}

// Get returns the recipe with the given id, or domain.ErrNotFound.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

// Search matches on name, category, and country, case-insensitively.
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.listLocked(), nil
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

func (s *MemorySource) listLocked() []domain.Recipe {
	out := make([]domain.Recipe, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.recipes[id])
	}
	return out
}

// seedRecipes returns the built-in dishes used when no catalog file is
// available.
func seedRecipes() []domain.Recipe {
	return []domain.Recipe{
		{
			ID:   "jollof-rice",
			Name: "Jollof Rice",
			Origin: domain.Origin{
				Country:     "Nigeria",
				Region:      "West Africa",
				EthnicGroup: "Yoruba",
			},
			Category:             "main",
			Difficulty:           "medium",
			EstimatedTimeMinutes: 60,
			ServingSize:          "4 people",
			Ingredients: []domain.RecipeIngredient{
				{IngredientID: "rice", Quantity: 3, Unit: "cups"},
				{IngredientID: "tomato", Quantity: 5, Unit: "pieces"},
				{IngredientID: "red-bell-pepper", Quantity: 2, Unit: "pieces"},
				{IngredientID: "onion", Quantity: 2, Unit: "pieces"},
				{IngredientID: "vegetable-oil", Quantity: 0.5, Unit: "cups"},
				{IngredientID: "chicken-stock", Quantity: 2, Unit: "cups"},
				{IngredientID: "curry-powder", Quantity: 1, Unit: "tablespoons", Optional: true},
			},
			Steps: []domain.Step{
				{Number: 1, Instruction: "Blend the tomatoes, red bell peppers, and one onion into a smooth paste."},
				{Number: 2, Instruction: "Heat the oil in a large pot and fry the sliced onion until golden.", Tip: "Medium heat keeps the onion from burning."},
				{Number: 3, Instruction: "Pour in the blended paste and fry until the raw tomato smell is gone."},
				{Number: 4, Instruction: "Add the chicken stock, curry powder, and salt, then bring to a boil."},
				{Number: 5, Instruction: "Wash the rice and stir it into the pot."},
				{Number: 6, Instruction: "Cover with foil and a lid, then cook on low heat until the rice is tender.", Tip: "The foil traps steam so the rice cooks evenly."},
				{Number: 7, Instruction: "Fluff the rice and serve hot."},
			},
		},
		{
			ID:   "egusi-soup",
			Name: "Egusi Soup",
			Origin: domain.Origin{
				Country:     "Nigeria",
				Region:      "West Africa",
				EthnicGroup: "Igbo",
			},
			Category:             "soup",
			Difficulty:           "medium",
			EstimatedTimeMinutes: 50,
			ServingSize:          "4 people",
			Ingredients: []domain.RecipeIngredient{
				{IngredientID: "egusi-seeds", Quantity: 2, Unit: "cups", Notes: "ground"},
				{IngredientID: "palm-oil", Quantity: 0.5, Unit: "cups"},
				{IngredientID: "spinach", Quantity: 4, Unit: "cups", Notes: "chopped"},
				{IngredientID: "beef", Quantity: 500, Unit: "grams"},
				{IngredientID: "onion", Quantity: 1, Unit: "pieces"},
				{IngredientID: "crayfish", Quantity: 2, Unit: "tablespoons", Optional: true},
			},
			Steps: []domain.Step{
				{Number: 1, Instruction: "Season the beef and boil it with the chopped onion until tender."},
				{Number: 2, Instruction: "Heat the palm oil in a pot over medium heat."},
				{Number: 3, Instruction: "Mix the ground egusi with a little water into a thick paste and fry it in the oil, stirring."},
				{Number: 4, Instruction: "Add the meat stock gradually and let the soup simmer."},
				{Number: 5, Instruction: "Add the boiled beef and the crayfish, then cook for ten more minutes."},
				{Number: 6, Instruction: "Stir in the spinach and turn off the heat."},
			},
		},
	}
}
