// Package storage implementa la persistencia del cliente: una sola clave,
// access_token, que sobrevive a los reinicios del proceso.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore almacén clave/valor del token de sesión. La app embebedora
// puede aportar otro backend; el cliente solo necesita estas tres operaciones.
type TokenStore interface {
	Load() (string, error) // "" si no hay token guardado
	Save(token string) error
	Clear() error
}

// FileTokenStore guarda el token en un archivo con permisos 0600.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenStore construye el almacén sobre la ruta dada.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load lee el token guardado; devuelve "" si el archivo no existe.
func (s *FileTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("storage: leer token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Save persiste el token, creando el directorio si hace falta.
func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("storage: crear directorio: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("storage: guardar token: %w", err)
	}
	return nil
}

// Clear purga el token guardado. No es error que no exista.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: purgar token: %w", err)
	}
	return nil
}

// MemoryTokenStore almacén volátil para tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryTokenStore construye el almacén en memoria.
func NewMemoryTokenStore() *MemoryTokenStore { return &MemoryTokenStore{} }

// Load devuelve el token en memoria.
func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Save reemplaza el token en memoria.
func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear borra el token en memoria.
func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
