package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// tokenFile is the on-disk layout of a FileEngine store.
type tokenFile struct {
	Tokens map[string]string `yaml:"tokens"`
}

// FileEngine persists tokens in a YAML file. Every call reads or rewrites
// the whole file, so several processes can share one store.
type FileEngine struct {
	path string
	mu   sync.Mutex
}

// NewFileEngine creates an engine backed by the file at path.
// The file is created on the first save.
func NewFileEngine(path string) *FileEngine {
	return &FileEngine{path: path}
}

// Path returns the backing file path.
func (e *FileEngine) Path() string {
	return e.path
}

// LoadToken implements TokenLoader.
func (e *FileEngine) LoadToken(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyTokenName
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	tf, err := e.read()
	if err != nil {
		return "", err
	}
	return tf.Tokens[name], nil
}

// SaveToken implements Engine.
func (e *FileEngine) SaveToken(name, token string) error {
	if name == "" {
		return ErrEmptyTokenName
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	tf, err := e.read()
	if err != nil {
		return err
	}
	tf.Tokens[name] = token
	return e.write(tf)
}

// RemoveToken implements Engine.
func (e *FileEngine) RemoveToken(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyTokenName
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	tf, err := e.read()
	if err != nil {
		return "", err
	}
	token, ok := tf.Tokens[name]
	if !ok {
		return "", nil
	}
	delete(tf.Tokens, name)
	return token, e.write(tf)
}

func (e *FileEngine) read() (*tokenFile, error) {
	tf := &tokenFile{}
	data, err := os.ReadFile(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			tf.Tokens = make(map[string]string)
			return tf, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	if err := yaml.Unmarshal(data, tf); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if tf.Tokens == nil {
		tf.Tokens = make(map[string]string)
	}
	return tf, nil
}

func (e *FileEngine) write(tf *tokenFile) error {
	data, err := yaml.Marshal(tf)
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}
	if dir := filepath.Dir(e.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}
