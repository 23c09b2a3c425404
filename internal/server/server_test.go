package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/interpret"
	"github.com/demilade/souschef/internal/logger"
	"github.com/demilade/souschef/internal/recipe"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	recipes := recipe.NewMemorySource(domain.Recipe{
		ID:   "test-rice",
		Name: "Test Rice",
		Ingredients: []domain.RecipeIngredient{
			{IngredientID: "rice", Quantity: 2, Unit: "cups"},
		},
		Steps: []domain.Step{
			{Number: 1, Instruction: "Wash the rice."},
			{Number: 2, Instruction: "Boil the water."},
			{Number: 3, Instruction: "Add rice to boiling water."},
		},
	})
	interp := interpret.New(log, interpret.WithRand(rand.New(rand.NewSource(1))))

	srv := httptest.NewServer(New(recipes, interp, log).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postChat(t *testing.T, srv *httptest.Server, message, recipeID string, stepIndex int) (int, chatResponse) {
	t.Helper()
	body, err := json.Marshal(chatRequest{
		Message: message,
		Context: chatContext{RecipeID: recipeID, StepIndex: stepIndex},
	})
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}

	resp, err := http.Post(srv.URL+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /chat: %v", err)
	}
	defer resp.Body.Close()

	var out chatResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp.StatusCode, out
}

func TestListRecipes(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/recipes")
	if err != nil {
		t.Fatalf("GET /recipes: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var out struct {
		Recipes []domain.Recipe `json:"recipes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(out.Recipes) != 1 || out.Recipes[0].ID != "test-rice" {
		t.Fatalf("unexpected recipes %+v", out.Recipes)
	}
}

func TestGetRecipe(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/recipes/test-rice")
	if err != nil {
		t.Fatalf("GET /recipes/test-rice: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var r domain.Recipe
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if r.Name != "Test Rice" || len(r.Steps) != 3 {
		t.Fatalf("unexpected recipe %+v", r)
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/recipes/nonexistent")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.Contains(out["error"], "nonexistent") {
		t.Fatalf("error body = %v", out)
	}
}

func TestChatAdvancesStep(t *testing.T) {
	srv := newTestServer(t)

	status, out := postChat(t, srv, "next step please", "test-rice", 0)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(out.Text, "Boil the water.") {
		t.Fatalf("text = %q", out.Text)
	}
	if out.NewContext.StepIndex != 1 {
		t.Fatalf("stepIndex = %d, want 1", out.NewContext.StepIndex)
	}
	if out.NewContext.RecipeID != "test-rice" {
		t.Fatalf("recipeId = %q", out.NewContext.RecipeID)
	}
}

func TestChatTimer(t *testing.T) {
	srv := newTestServer(t)

	status, out := postChat(t, srv, "set a timer for 10 minutes", "test-rice", 1)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if out.TimerSeconds != 600 {
		t.Fatalf("timerSeconds = %d, want 600", out.TimerSeconds)
	}
	if out.NewContext.StepIndex != 1 {
		t.Fatalf("timer must not move the step, got %d", out.NewContext.StepIndex)
	}
}

func TestChatUnboundSession(t *testing.T) {
	srv := newTestServer(t)

	status, out := postChat(t, srv, "hello", "", 0)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(out.Text, "select a recipe") {
		t.Fatalf("text = %q", out.Text)
	}
	if out.NewContext.StepIndex != 0 || out.NewContext.RecipeID != "" {
		t.Fatalf("unexpected context %+v", out.NewContext)
	}
}

func TestChatUnknownRecipeTreatedAsUnbound(t *testing.T) {
	srv := newTestServer(t)

	status, out := postChat(t, srv, "next step", "nonexistent", 2)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(out.Text, "select a recipe") {
		t.Fatalf("text = %q", out.Text)
	}
	if out.NewContext.StepIndex != 0 {
		t.Fatalf("stepIndex = %d, want 0 for unresolved recipe", out.NewContext.StepIndex)
	}
}

func TestChatClampsStepIndex(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name      string
		stepIndex int
		want      int
	}{
		{"negative", -5, 1},
		{"far past the end", 99, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := postChat(t, srv, "next step", "test-rice", tt.stepIndex)
			if status != http.StatusOK {
				t.Fatalf("status = %d", status)
			}
			if out.NewContext.StepIndex != tt.want {
				t.Fatalf("stepIndex = %d, want %d", out.NewContext.StepIndex, tt.want)
			}
		})
	}
}

func TestChatBadJSON(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestChatIngredients(t *testing.T) {
	srv := newTestServer(t)

	status, out := postChat(t, srv, "what do i need", "test-rice", 0)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	want := fmt.Sprintf("You need: %s.", "2 cups of rice")
	if out.Text != want {
		t.Fatalf("text = %q, want %q", out.Text, want)
	}
	if out.NewContext.StepIndex != 0 {
		t.Fatalf("ingredient query must not move the step, got %d", out.NewContext.StepIndex)
	}
}
