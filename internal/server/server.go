// Package server exposes the recipe catalog and the command interpreter
// over HTTP. The chat endpoint is stateless: the client carries the
// session context and sends it back with every message, so any number of
// clients can cook against one process.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/interpret"
	"github.com/demilade/souschef/internal/logger"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	recipes domain.RecipeSource
	interp  *interpret.Interpreter
	log     *logger.Logger
}

// New creates an HTTP server facade.
func New(recipes domain.RecipeSource, interp *interpret.Interpreter, log *logger.Logger) *Server {
	return &Server{
		recipes: recipes,
		interp:  interp,
		log:     log,
	}
}

// Router builds the route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/recipes", s.handleListRecipes)
	r.Get("/recipes/{id}", s.handleGetRecipe)
	r.Post("/chat", s.handleChat)

	return r
}

// chatContext is the client-held slice of session state.
type chatContext struct {
	RecipeID  string `json:"recipeId"`
	StepIndex int    `json:"stepIndex"`
}

type chatRequest struct {
	Message string      `json:"message"`
	Context chatContext `json:"context"`
}

type chatResponse struct {
	Text         string      `json:"text"`
	NewContext   chatContext `json:"newContext"`
	TimerSeconds int         `json:"timerSeconds,omitempty"`
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.recipes.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("listing recipes: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recipe, err := s.recipes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("recipe %q not found", id))
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("getting recipe: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding chat request: %w", err))
		return
	}

	// An unknown or empty recipe id interprets as an unbound session; the
	// interpreter then asks the user to pick a recipe.
	var recipe *domain.Recipe
	if req.Context.RecipeID != "" {
		var err error
		recipe, err = s.recipes.Get(r.Context(), req.Context.RecipeID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.writeError(w, http.StatusInternalServerError, fmt.Errorf("resolving recipe: %w", err))
			return
		}
	}

	snap := domain.SessionContext{
		RecipeID:  req.Context.RecipeID,
		StepIndex: clampStep(req.Context.StepIndex, recipe),
	}

	res := s.interp.Interpret(req.Message, recipe, snap)

	newCtx := chatContext{
		RecipeID:  req.Context.RecipeID,
		StepIndex: snap.StepIndex + res.StepDelta,
	}
	if recipe != nil {
		newCtx.StepIndex = clampStep(newCtx.StepIndex, recipe)
	} else {
		newCtx.StepIndex = 0
	}

	s.log.Debug("chat: %q -> step %d, timer %ds", req.Message, newCtx.StepIndex, res.TimerSeconds)
	s.writeJSON(w, http.StatusOK, chatResponse{
		Text:         res.Text,
		NewContext:   newCtx,
		TimerSeconds: res.TimerSeconds,
	})
}

// clampStep keeps a client-supplied index inside [0, len(steps)].
func clampStep(idx int, r *domain.Recipe) int {
	if idx < 0 {
		return 0
	}
	if r != nil && idx > len(r.Steps) {
		return len(r.Steps)
	}
	return idx
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("server: encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("server: %v", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
