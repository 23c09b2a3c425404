package recipe

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/logger"
)

// Book maps ingredient IDs to localized display names. It is loaded from
// an ingredients.json document with a top-level "ingredients" array.
type Book struct {
	ingredients map[string]domain.Ingredient
}

type ingredientsFile struct {
	Ingredients []domain.Ingredient `json:"ingredients"`
}

// LoadBook reads the ingredient catalog at path. On any load error the
// returned book is empty, so Name falls back to raw IDs, and the error is
// surfaced for logging.
func LoadBook(path string, log *logger.Logger) (*Book, error) {
	b := &Book{ingredients: make(map[string]domain.Ingredient)}

	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("reading ingredient catalog: %w", err)
	}

	var f ingredientsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return b, fmt.Errorf("parsing ingredient catalog %s: %w", path, err)
	}

	for _, ing := range f.Ingredients {
		if ing.ID == "" {
			continue
		}
		b.ingredients[ing.ID] = ing
	}

	log.Info("recipe: loaded %d ingredients from %s", len(b.ingredients), path)
	return b, nil
}

// NewBook creates a book from the given entries. Tests use it directly.
func NewBook(ingredients ...domain.Ingredient) *Book {
	b := &Book{ingredients: make(map[string]domain.Ingredient, len(ingredients))}
	for _, ing := range ingredients {
		b.ingredients[ing.ID] = ing
	}
	return b
}

// Name resolves an ingredient ID to its display name in the given
// language. Unknown IDs come back unchanged, so a sparse catalog never
// breaks a shopping list.
func (b *Book) Name(id, language string) string {
	ing, ok := b.ingredients[id]
	if !ok {
		return id
	}
	return ing.Name(language)
}

// Len returns the number of catalog entries.
func (b *Book) Len() int {
	return len(b.ingredients)
}
