package repository

import (
	"context"
	"fmt"

	"github.com/PhelGc/fieldops/internal/importer"
)

// Draft copia del buffer de columnas pendiente de importar
func (r *Repository) Draft() importer.Columns {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draft.Clone()
}

// SaveDraftColumn reemplaza una columna completa del buffer
func (r *Repository) SaveDraftColumn(ctx context.Context, key importer.ColumnKey, values []string) error {
	return r.updateDraft(ctx, func(c importer.Columns) { c.Set(key, values) })
}

// ClearDraft vacía una columna del buffer
func (r *Repository) ClearDraft(ctx context.Context, key importer.ColumnKey) error {
	return r.updateDraft(ctx, func(c importer.Columns) { c.Clear(key) })
}

// ClearAllDrafts vacía todo el buffer y elimina la clave del almacenamiento
func (r *Repository) ClearAllDrafts(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, KeyImportDraft); err != nil {
		return fmt.Errorf("error eliminando %s: %w", KeyImportDraft, err)
	}
	r.draft = importer.NewColumns()
	return nil
}

func (r *Repository) updateDraft(ctx context.Context, mutate func(importer.Columns)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.draft.Clone()
	mutate(next)
	if err := r.write(ctx, KeyImportDraft, next); err != nil {
		return err
	}
	r.draft = next
	return nil
}
