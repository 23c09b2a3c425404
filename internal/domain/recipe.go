// Package domain defines the core types and interfaces for the cooking
// assistant. All other packages depend on domain; domain depends on nothing.
package domain

import "strings"

// Recipe represents a complete dish from the catalog. Steps are ordered and
// their numbers are 1-based and contiguous.
type Recipe struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Origin               Origin             `json:"origin"`
	Category             string             `json:"category"`
	Difficulty           string             `json:"difficulty"`
	EstimatedTimeMinutes int                `json:"estimated_time_minutes"`
	ServingSize          string             `json:"serving_size"`
	Ingredients          []RecipeIngredient `json:"ingredients"`
	Steps                []Step             `json:"steps"`
}

// Origin records where a dish comes from.
type Origin struct {
	Country     string `json:"country"`
	Region      string `json:"region,omitempty"`
	EthnicGroup string `json:"ethnic_group,omitempty"`
}

// Step represents a single cooking instruction.
type Step struct {
	Number      int    `json:"step_number"`
	Instruction string `json:"instruction"`
	Tip         string `json:"tip,omitempty"`
}

// RecipeIngredient ties an ingredient to the quantity a recipe calls for.
type RecipeIngredient struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"` // "pieces", "cups", "tablespoons", "grams", ""
	Optional     bool    `json:"optional,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// Ingredient is a catalog entry with display names keyed by language.
type Ingredient struct {
	ID    string            `json:"id"`
	Names map[string]string `json:"names"`
}

// Name returns the display name for the given language, falling back to
// english and finally to the raw ID.
func (i Ingredient) Name(language string) string {
	if n, ok := i.Names[strings.ToLower(language)]; ok && n != "" {
		return n
	}
	if n, ok := i.Names["english"]; ok && n != "" {
		return n
	}
	return i.ID
}
