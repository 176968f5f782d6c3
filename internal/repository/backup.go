package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/importer"
	"github.com/PhelGc/fieldops/internal/incident"
)

var ErrInvalidBackup = errors.New("formato de respaldo inválido")

// Backup respaldo completo, mismo formato que el de la versión web
type Backup struct {
	Incidents         []incident.Incident         `json:"incidents"`
	BannedTechs       []incident.BannedTechnician `json:"bannedTechs"`
	Users             []incident.UserAccount      `json:"users"`
	MasterVendors     []incident.MasterVendor     `json:"masterVendors"`
	MasterTechnicians []incident.MasterTechnician `json:"masterTechnicians"`
	ExportDate        string                      `json:"exportDate"`
}

// restoreBlob distingue colecciones ausentes (nil) de vacías
type restoreBlob struct {
	Incidents         *[]incident.Incident         `json:"incidents"`
	BannedTechs       *[]incident.BannedTechnician `json:"bannedTechs"`
	Users             *[]incident.UserAccount      `json:"users"`
	MasterVendors     *[]incident.MasterVendor     `json:"masterVendors"`
	MasterTechnicians *[]incident.MasterTechnician `json:"masterTechnicians"`
}

// BackupFileName nombre sugerido del archivo de respaldo
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("fieldops_backup_%s.json", now.Format(importer.DateLayout))
}

// Export serializa todo el estado. pretty=true para archivo, false para compartir.
func (r *Repository) Export(pretty bool) ([]byte, error) {
	r.mu.Lock()
	b := Backup{
		Incidents:         nonNil(r.incidents),
		BannedTechs:       nonNil(r.banned),
		Users:             nonNil(r.users),
		MasterVendors:     nonNil(r.vendors),
		MasterTechnicians: nonNil(r.techs),
		ExportDate:        r.opts.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	r.mu.Unlock()

	if pretty {
		return json.MarshalIndent(b, "", "  ")
	}
	return json.Marshal(b)
}

// Restore sobrescribe todo el estado con un respaldo. Incidencias, lista negra
// y usuarios son obligatorios; las listas maestras sólo se reemplazan si vienen.
func (r *Repository) Restore(ctx context.Context, data []byte) error {
	var blob restoreBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if blob.Incidents == nil || blob.BannedTechs == nil || blob.Users == nil {
		return ErrInvalidBackup
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	type change struct {
		key       string
		prev, next any
		apply     func()
	}
	changes := []change{
		{KeyIncidents, r.incidents, *blob.Incidents, func() { r.incidents = *blob.Incidents }},
		{KeyBanned, r.banned, *blob.BannedTechs, func() { r.banned = *blob.BannedTechs }},
		{KeyUsers, r.users, *blob.Users, func() { r.users = *blob.Users }},
	}
	if blob.MasterVendors != nil {
		changes = append(changes, change{KeyMasterVendors, r.vendors, *blob.MasterVendors, func() { r.vendors = *blob.MasterVendors }})
	}
	if blob.MasterTechnicians != nil {
		changes = append(changes, change{KeyMasterTechs, r.techs, *blob.MasterTechnicians, func() { r.techs = *blob.MasterTechnicians }})
	}

	for i, c := range changes {
		if err := r.write(ctx, c.key, c.next); err != nil {
			// revertir lo que ya se escribió
			for _, done := range changes[:i] {
				if rbErr := r.write(ctx, done.key, done.prev); rbErr != nil {
					r.opts.Logger.Error("Error revirtiendo restauración",
						zap.String("key", done.key), zap.Error(rbErr))
				}
			}
			return err
		}
	}
	for _, c := range changes {
		c.apply()
	}

	r.opts.Logger.Info("Restauración completa",
		zap.Int("incidents", len(r.incidents)),
		zap.Int("banned", len(r.banned)),
		zap.Int("users", len(r.users)))
	return nil
}

func nonNil[T any](s []T) []T {
	if len(s) == 0 {
		return []T{}
	}
	return append([]T(nil), s...)
}
