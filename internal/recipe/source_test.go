package recipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/logger"
)

const testCatalog = `{
  "recipes": [
    {
      "id": "jollof-rice",
      "name": "Jollof Rice",
      "origin": {"country": "Nigeria", "region": "West Africa"},
      "category": "main",
      "difficulty": "medium",
      "estimated_time_minutes": 60,
      "serving_size": "6 people",
      "ingredients": [
        {"ingredient_id": "rice", "quantity": 2, "unit": "cups"},
        {"ingredient_id": "tomato", "quantity": 4, "unit": "pieces"}
      ],
      "steps": [
        {"step_number": 1, "instruction": "Wash the rice."},
        {"step_number": 2, "instruction": "Blend the tomatoes."}
      ]
    },
    {
      "id": "plain-rice",
      "name": "Plain Rice",
      "steps": [
        {"instruction": "Wash the rice."},
        {"instruction": "Boil until soft."}
      ]
    },
    {
      "id": "jollof-rice",
      "name": "Duplicate Jollof",
      "steps": [{"instruction": "Should be skipped."}]
    },
    {
      "name": "No ID",
      "steps": [{"instruction": "Should be skipped."}]
    }
  ]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}
	return path
}

func TestNewSource(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src, err := NewSource(writeCatalog(t, testCatalog), log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	list, err := src.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2 (duplicate and id-less entries skipped)", len(list))
	}
	if list[0].ID != "jollof-rice" || list[1].ID != "plain-rice" {
		t.Fatalf("catalog order not preserved: %s, %s", list[0].ID, list[1].ID)
	}

	r, err := src.Get(ctx, "jollof-rice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Name != "Jollof Rice" {
		t.Fatalf("duplicate entry replaced the first: %q", r.Name)
	}
	if r.Origin.Country != "Nigeria" {
		t.Fatalf("origin country = %q", r.Origin.Country)
	}
	if len(r.Ingredients) != 2 || r.Ingredients[0].IngredientID != "rice" {
		t.Fatalf("unexpected ingredients %+v", r.Ingredients)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src, err := NewSource(writeCatalog(t, testCatalog), log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := src.Get(context.Background(), "plain-rice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.ServingSize != "4 people" {
		t.Fatalf("serving size = %q, want default", r.ServingSize)
	}
	if r.Difficulty != "medium" {
		t.Fatalf("difficulty = %q, want default", r.Difficulty)
	}
	for i, step := range r.Steps {
		if step.Number != i+1 {
			t.Fatalf("step %d number = %d", i, step.Number)
		}
	}
}

func TestNewSourceMissingFile(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src, err := NewSource(filepath.Join(t.TempDir(), "nope.json"), log)
	if err == nil {
		t.Fatal("expected an error for a missing catalog")
	}

	// The empty source still works, it just holds nothing.
	ctx := context.Background()
	if list, _ := src.List(ctx); len(list) != 0 {
		t.Fatalf("empty source listed %d recipes", len(list))
	}
	if _, err := src.Get(ctx, "jollof-rice"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewSourceMalformed(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src, err := NewSource(writeCatalog(t, `{"recipes": [`), log)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if list, _ := src.List(context.Background()); len(list) != 0 {
		t.Fatalf("malformed catalog produced %d recipes", len(list))
	}
}

func TestSearch(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	src, err := NewSource(writeCatalog(t, testCatalog), log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		query string
		want  []string
	}{
		{"jollof", []string{"jollof-rice"}},
		{"RICE", []string{"jollof-rice", "plain-rice"}},
		{"nigeria", []string{"jollof-rice"}},
		{"main", []string{"jollof-rice"}},
		{"", []string{"jollof-rice", "plain-rice"}},
		{"sushi", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := src.Search(ctx, tt.query)
			if err != nil {
				t.Fatalf("Search(%q): %v", tt.query, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) returned %d recipes, want %d", tt.query, len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Fatalf("Search(%q)[%d] = %s, want %s", tt.query, i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestMemorySourceSeed(t *testing.T) {
	src := NewMemorySource()
	ctx := context.Background()

	list, err := src.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("seeded source is empty")
	}

	r, err := src.Get(ctx, "jollof-rice")
	if err != nil {
		t.Fatalf("Get(jollof-rice): %v", err)
	}
	if len(r.Steps) == 0 || len(r.Ingredients) == 0 {
		t.Fatal("seeded recipe has no steps or ingredients")
	}

	if _, err := src.Get(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemorySourceExplicit(t *testing.T) {
	src := NewMemorySource(domain.Recipe{ID: "only", Name: "Only One"})

	list, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "only" {
		t.Fatalf("explicit recipes must replace the seed, got %+v", list)
	}
}

func TestBookName(t *testing.T) {
	book := NewBook(domain.Ingredient{
		ID: "scotch-bonnet",
		Names: map[string]string{
			"english": "scotch bonnet pepper",
			"yoruba":  "ata rodo",
		},
	})

	tests := []struct {
		name     string
		id       string
		language string
		want     string
	}{
		{"known language", "scotch-bonnet", "yoruba", "ata rodo"},
		{"fallback to english", "scotch-bonnet", "french", "scotch bonnet pepper"},
		{"unknown id", "dragonfruit", "english", "dragonfruit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := book.Name(tt.id, tt.language); got != tt.want {
				t.Fatalf("Name(%q, %q) = %q, want %q", tt.id, tt.language, got, tt.want)
			}
		})
	}
}

func TestLoadBookMalformed(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	path := filepath.Join(t.TempDir(), "ingredients.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	book, err := LoadBook(path, log)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if book.Len() != 0 {
		t.Fatalf("malformed catalog produced %d ingredients", book.Len())
	}
	if got := book.Name("rice", "english"); got != "rice" {
		t.Fatalf("empty book must fall back to the raw id, got %q", got)
	}
}
