package auth

import (
	"errors"
	"sync"
)

// ErrEmptyTokenName is returned when a token name is empty.
var ErrEmptyTokenName = errors.New("token name is empty")

// TokenLoader loads auth tokens by name.
type TokenLoader interface {
	// LoadToken returns the token stored under name, or "" if there is none.
	LoadToken(name string) (string, error)
}

// Engine stores auth tokens by name.
type Engine interface {
	TokenLoader

	// SaveToken stores token under name, replacing any previous value.
	SaveToken(name, token string) error

	// RemoveToken deletes the token stored under name and returns it.
	RemoveToken(name string) (string, error)
}

// MemoryEngine keeps tokens in memory. The zero value is ready to use.
type MemoryEngine struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryEngine creates an empty in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{}
}

// LoadToken implements TokenLoader.
func (e *MemoryEngine) LoadToken(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyTokenName
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tokens[name], nil
}

// SaveToken implements Engine.
func (e *MemoryEngine) SaveToken(name, token string) error {
	if name == "" {
		return ErrEmptyTokenName
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tokens == nil {
		e.tokens = make(map[string]string)
	}
	e.tokens[name] = token
	return nil
}

// RemoveToken implements Engine.
func (e *MemoryEngine) RemoveToken(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyTokenName
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	token := e.tokens[name]
	delete(e.tokens, name)
	return token, nil
}

// Compile-time interface satisfaction checks.
var (
	_ Engine = (*MemoryEngine)(nil)
	_ Engine = (*FileEngine)(nil)
)
