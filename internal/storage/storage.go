package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound la clave no existe en el almacenamiento
var ErrNotFound = errors.New("clave no encontrada")

// Store almacenamiento clave-valor de blobs JSON. La aplicación lo lee al
// iniciar y lo escribe en cada cambio de estado.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// FileStore guarda cada clave en un archivo individual dentro de basePath
type FileStore struct {
	basePath string
}

// NewFileStore crea una nueva instancia de FileStore
func NewFileStore(basePath string) (*FileStore, error) {
	// Crear directorio base si no existe
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("error creando directorio de almacenamiento: %w", err)
	}

	return &FileStore{
		basePath: basePath,
	}, nil
}

// Get carga el blob de una clave
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error leyendo %s: %w", key, err)
	}
	return data, nil
}

// Put escribe el blob de forma atómica (archivo temporal + rename)
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("error creando archivo temporal: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("error escribiendo %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error cerrando %s: %w", key, err)
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error guardando %s: %w", key, err)
	}
	return nil
}

// Delete elimina una clave; no falla si no existe
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error eliminando %s: %w", key, err)
	}
	return nil
}

// Close no hace nada; existe para cumplir Store
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.basePath, getFileName(key))
}

// getFileName genera el nombre del archivo para una clave
func getFileName(key string) string {
	// Reemplazar caracteres no válidos para nombres de archivo
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "?", "_",
		"*", "_", "<", "_", ">", "_", "|", "_",
	)
	safeKey := replacer.Replace(key)
	if safeKey == "" || strings.HasPrefix(safeKey, ".") {
		safeKey = "_" + safeKey
	}
	return safeKey + ".json"
}
