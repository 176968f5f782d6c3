package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/importer"
	"github.com/PhelGc/fieldops/internal/incident"
)

var (
	ErrMissingEntity    = errors.New("falta el proveedor o el técnico")
	ErrIncidentNotFound = errors.New("incidencia no encontrada")
)

// Incidents copia de los registros en orden
func (r *Repository) Incidents() []incident.Incident {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]incident.Incident(nil), r.incidents...)
}

// AddIncident alta manual: se antepone a la lista con id manual-<ms>.
// Proveedor y técnico deben estar en las listas maestras; se guardan con el
// nombre registrado.
func (r *Repository) AddIncident(ctx context.Context, inc incident.Incident) (incident.Incident, error) {
	inc.VendorName = strings.TrimSpace(inc.VendorName)
	inc.TechnicianName = strings.TrimSpace(inc.TechnicianName)
	if inc.VendorName == "" || inc.TechnicianName == "" {
		return incident.Incident{}, ErrMissingEntity
	}
	if inc.Date == "" {
		inc.Date = r.today()
	}
	inc.ID = fmt.Sprintf("manual-%d", r.opts.Now().UnixMilli())

	r.mu.Lock()
	defer r.mu.Unlock()

	var ok bool
	if inc.VendorName, ok = r.findVendor(inc.VendorName); !ok {
		return incident.Incident{}, fmt.Errorf("%w: %s", ErrUnknownVendor, inc.VendorName)
	}
	if inc.TechnicianName, ok = r.findTechnician(inc.VendorName, inc.TechnicianName); !ok {
		return incident.Incident{}, fmt.Errorf("%w: %s (%s)", ErrUnknownTechnician, inc.TechnicianName, inc.VendorName)
	}

	next := make([]incident.Incident, 0, len(r.incidents)+1)
	next = append(next, inc)
	next = append(next, r.incidents...)
	if err := r.write(ctx, KeyIncidents, next); err != nil {
		return incident.Incident{}, err
	}
	r.incidents = next

	r.opts.Logger.Info("Incidencia registrada manualmente",
		zap.String("id", inc.ID), zap.String("incident", inc.IncidentNumber))
	return inc, nil
}

// AppendIncidents agrega un lote completo al final, todo o nada.
// Un lote vacío no es una importación.
func (r *Repository) AppendIncidents(ctx context.Context, batch []incident.Incident) error {
	if len(batch) == 0 {
		return importer.ErrEmptyImport
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]incident.Incident, 0, len(r.incidents)+len(batch))
	next = append(next, r.incidents...)
	next = append(next, batch...)
	if err := r.write(ctx, KeyIncidents, next); err != nil {
		return err
	}
	r.incidents = next

	r.opts.Logger.Info("Lote de incidencias importado", zap.Int("count", len(batch)))
	return nil
}

// DeleteIncident elimina un registro por id
func (r *Repository) DeleteIncident(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]incident.Incident, 0, len(r.incidents))
	for _, inc := range r.incidents {
		if inc.ID != id {
			next = append(next, inc)
		}
	}
	if len(next) == len(r.incidents) {
		return fmt.Errorf("%w: %s", ErrIncidentNotFound, id)
	}

	if err := r.write(ctx, KeyIncidents, next); err != nil {
		return err
	}
	r.incidents = next
	return nil
}

// ClearIncidents borra todos los registros
func (r *Repository) ClearIncidents(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := []incident.Incident{}
	if err := r.write(ctx, KeyIncidents, next); err != nil {
		return err
	}
	r.opts.Logger.Warn("Base de incidencias vaciada", zap.Int("deleted", len(r.incidents)))
	r.incidents = next
	return nil
}

// HasIncidentNumber indica si ya existe un registro con ese número de ticket
func (r *Repository) HasIncidentNumber(number string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inc := range r.incidents {
		if inc.IncidentNumber == number {
			return true
		}
	}
	return false
}

// VendorsInRecords proveedores presentes en los registros, ordenados
func (r *Repository) VendorsInRecords() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.incidents))
	for _, inc := range r.incidents {
		names = append(names, inc.VendorName)
	}
	return incident.UniqueSorted(names)
}

// TechniciansInRecords técnicos de un proveedor presentes en los registros;
// con vendor vacío devuelve todos
func (r *Repository) TechniciansInRecords(vendor string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for _, inc := range r.incidents {
		if vendor == "" || inc.VendorName == vendor {
			names = append(names, inc.TechnicianName)
		}
	}
	return incident.UniqueSorted(names)
}

// Filter registros de un técnico o proveedor
func (r *Repository) Filter(entityType incident.EntityType, name string) []incident.Incident {
	r.mu.Lock()
	defer r.mu.Unlock()
	return incident.Filter(r.incidents, entityType, name)
}
