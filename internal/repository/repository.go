// Package repository mantiene en memoria el estado de la aplicación y lo
// persiste en un storage.Store en cada cambio.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/auth"
	"github.com/PhelGc/fieldops/internal/importer"
	"github.com/PhelGc/fieldops/internal/incident"
	"github.com/PhelGc/fieldops/internal/storage"
)

// Claves del almacenamiento; compatibles con los datos de la versión web
const (
	KeyIncidents     = "fieldops_incidents_v2"
	KeyBanned        = "fieldops_banned_v1"
	KeyUsers         = "fieldops_users_v1"
	KeyMasterVendors = "fieldops_master_vendors_v1"
	KeyMasterTechs   = "fieldops_master_techs_v1"
	KeyImportDraft   = "fieldops_import_draft_v1"
	KeySchemaVersion = "fieldops_schema_version"

	// SchemaVersion 1 = datos de la versión web sin clave de versión
	SchemaVersion = 2
)

var ErrSchemaTooNew = errors.New("los datos guardados son de una versión más nueva")

// Options dependencias inyectables del repositorio
type Options struct {
	AdminUsername string // Usuario inicial; no se puede eliminar
	AdminPassword string
	Now           func() time.Time
	NewID         func() string
	Logger        *zap.Logger
}

// Repository colecciones de la aplicación respaldadas por un Store
type Repository struct {
	mu    sync.Mutex
	store storage.Store
	opts  Options

	incidents []incident.Incident
	banned    []incident.BannedTechnician
	users     []incident.UserAccount
	vendors   []incident.MasterVendor
	techs     []incident.MasterTechnician
	draft     importer.Columns
}

// Open carga el estado desde el store, sembrando las claves ausentes
func Open(ctx context.Context, store storage.Store, opts Options) (*Repository, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Repository{store: store, opts: opts}
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) load(ctx context.Context) error {
	version := 1
	found, err := r.read(ctx, KeySchemaVersion, &version)
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("%w: %d > %d", ErrSchemaTooNew, version, SchemaVersion)
	}
	if found && version == SchemaVersion {
		r.opts.Logger.Debug("Esquema vigente", zap.Int("version", version))
	} else {
		r.opts.Logger.Info("Actualizando versión de esquema",
			zap.Int("from", version), zap.Int("to", SchemaVersion))
	}

	seedUsers := func() (any, error) {
		hash, err := auth.HashPassword(r.opts.AdminPassword)
		if err != nil {
			return nil, err
		}
		return []incident.UserAccount{{ID: "1", Username: r.opts.AdminUsername, PasswordHash: hash}}, nil
	}

	collections := []struct {
		key  string
		dest any
		seed func() (any, error)
	}{
		{KeyIncidents, &r.incidents, func() (any, error) { return incident.SeedIncidents(), nil }},
		{KeyBanned, &r.banned, func() (any, error) { return []incident.BannedTechnician{}, nil }},
		{KeyUsers, &r.users, seedUsers},
		{KeyMasterVendors, &r.vendors, func() (any, error) { return incident.SeedVendors(), nil }},
		{KeyMasterTechs, &r.techs, func() (any, error) { return incident.SeedTechnicians(), nil }},
	}

	for _, c := range collections {
		found, err := r.read(ctx, c.key, c.dest)
		if err != nil {
			return err
		}
		if found {
			continue
		}

		seed, err := c.seed()
		if err != nil {
			return err
		}
		if err := r.write(ctx, c.key, seed); err != nil {
			return err
		}
		// releer para dejar el destino con el valor sembrado
		if _, err := r.read(ctx, c.key, c.dest); err != nil {
			return err
		}
		r.opts.Logger.Info("Colección inicializada con datos por defecto", zap.String("key", c.key))
	}

	draft := map[importer.ColumnKey][]string{}
	if _, err := r.read(ctx, KeyImportDraft, &draft); err != nil {
		return err
	}
	r.draft = importer.NewColumns()
	for k, v := range draft {
		r.draft.Set(k, v)
	}

	return r.write(ctx, KeySchemaVersion, SchemaVersion)
}

// read decodifica una clave; found=false si no existe
func (r *Repository) read(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error leyendo %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("error parseando %s: %w", key, err)
	}
	return true, nil
}

func (r *Repository) write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error serializando %s: %w", key, err)
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("error persistiendo %s: %w", key, err)
	}
	return nil
}

func (r *Repository) today() string {
	return r.opts.Now().Format(importer.DateLayout)
}
