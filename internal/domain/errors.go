package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrNoRecipe       = errors.New("no recipe bound to session")
	ErrNotImplemented = errors.New("not implemented")
)
