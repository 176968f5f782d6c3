package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/incident"
)

var (
	ErrVendorExists      = errors.New("el proveedor ya existe")
	ErrTechnicianExists  = errors.New("el técnico ya existe para este proveedor")
	ErrUnknownVendor     = errors.New("proveedor fuera de la lista maestra")
	ErrUnknownTechnician = errors.New("técnico fuera de la lista maestra del proveedor")
	ErrEmptyName         = errors.New("el nombre no puede estar vacío")
	ErrEntryNotFound     = errors.New("registro no encontrado")
)

// Vendors lista maestra de proveedores
func (r *Repository) Vendors() []incident.MasterVendor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]incident.MasterVendor(nil), r.vendors...)
}

// MasterVendorNames nombres de proveedores autorizados, ordenados
func (r *Repository) MasterVendorNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.vendors))
	for i, v := range r.vendors {
		names[i] = v.Name
	}
	sort.Strings(names)
	return names
}

// AddVendor agrega un proveedor; el nombre no se puede repetir (sin distinguir mayúsculas)
func (r *Repository) AddVendor(ctx context.Context, name string) (incident.MasterVendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return incident.MasterVendor{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.vendors {
		if incident.SameName(v.Name, name) {
			return incident.MasterVendor{}, ErrVendorExists
		}
	}

	vendor := incident.MasterVendor{ID: r.opts.NewID(), Name: name}
	next := append(append([]incident.MasterVendor(nil), r.vendors...), vendor)
	if err := r.write(ctx, KeyMasterVendors, next); err != nil {
		return incident.MasterVendor{}, err
	}
	r.vendors = next
	return vendor, nil
}

// RemoveVendor elimina un proveedor de la lista maestra por id
func (r *Repository) RemoveVendor(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, ok := without(r.vendors, func(v incident.MasterVendor) bool { return v.ID == id })
	if !ok {
		return ErrEntryNotFound
	}
	if err := r.write(ctx, KeyMasterVendors, next); err != nil {
		return err
	}
	r.vendors = next
	return nil
}

// Technicians lista maestra de técnicos
func (r *Repository) Technicians() []incident.MasterTechnician {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]incident.MasterTechnician(nil), r.techs...)
}

// MasterTechMap proveedor -> técnicos autorizados, en orden de alta
func (r *Repository) MasterTechMap() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := make(map[string][]string)
	for _, t := range r.techs {
		m[t.VendorName] = append(m[t.VendorName], t.Name)
	}
	return m
}

// AddTechnician agrega un técnico a un proveedor de la lista maestra; no se repite por proveedor
func (r *Repository) AddTechnician(ctx context.Context, name, vendor string) (incident.MasterTechnician, error) {
	name = strings.TrimSpace(name)
	vendor = strings.TrimSpace(vendor)
	if name == "" || vendor == "" {
		return incident.MasterTechnician{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	vendor, ok := r.findVendor(vendor)
	if !ok {
		return incident.MasterTechnician{}, fmt.Errorf("%w: %s", ErrUnknownVendor, vendor)
	}
	for _, t := range r.techs {
		if incident.SameName(t.Name, name) && t.VendorName == vendor {
			return incident.MasterTechnician{}, ErrTechnicianExists
		}
	}

	tech := incident.MasterTechnician{ID: r.opts.NewID(), Name: name, VendorName: vendor}
	next := append(append([]incident.MasterTechnician(nil), r.techs...), tech)
	if err := r.write(ctx, KeyMasterTechs, next); err != nil {
		return incident.MasterTechnician{}, err
	}
	r.techs = next
	return tech, nil
}

// RemoveTechnician elimina un técnico de la lista maestra por id
func (r *Repository) RemoveTechnician(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, ok := without(r.techs, func(t incident.MasterTechnician) bool { return t.ID == id })
	if !ok {
		return ErrEntryNotFound
	}
	if err := r.write(ctx, KeyMasterTechs, next); err != nil {
		return err
	}
	r.techs = next
	return nil
}

// findVendor nombre registrado de un proveedor autorizado. Requiere r.mu.
func (r *Repository) findVendor(name string) (string, bool) {
	for _, v := range r.vendors {
		if incident.SameName(v.Name, name) {
			return v.Name, true
		}
	}
	return name, false
}

// findTechnician nombre registrado de un técnico del proveedor. Requiere r.mu.
func (r *Repository) findTechnician(vendor, name string) (string, bool) {
	for _, t := range r.techs {
		if t.VendorName == vendor && incident.SameName(t.Name, name) {
			return t.Name, true
		}
	}
	return name, false
}

// Banned lista negra completa
func (r *Repository) Banned() []incident.BannedTechnician {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]incident.BannedTechnician(nil), r.banned...)
}

// AddBanned agrega un técnico a la lista negra de un cliente
func (r *Repository) AddBanned(ctx context.Context, name, vendor, customer, reason string) (incident.BannedTechnician, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return incident.BannedTechnician{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := incident.BannedTechnician{
		ID:           r.opts.NewID(),
		Name:         name,
		VendorName:   strings.TrimSpace(vendor),
		CustomerName: strings.TrimSpace(customer),
		Reason:       strings.TrimSpace(reason),
		DateAdded:    r.today(),
	}
	next := append(append([]incident.BannedTechnician(nil), r.banned...), entry)
	if err := r.write(ctx, KeyBanned, next); err != nil {
		return incident.BannedTechnician{}, err
	}
	r.banned = next

	r.opts.Logger.Info("Técnico agregado a lista negra",
		zap.String("technician", entry.Name), zap.String("customer", entry.CustomerName))
	return entry, nil
}

// RemoveBanned quita una entrada de la lista negra
func (r *Repository) RemoveBanned(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, ok := without(r.banned, func(b incident.BannedTechnician) bool { return b.ID == id })
	if !ok {
		return ErrEntryNotFound
	}
	if err := r.write(ctx, KeyBanned, next); err != nil {
		return err
	}
	r.banned = next
	return nil
}

// BanContext clientes que vetaron al técnico, unidos por ", "; vacío si no hay
func (r *Repository) BanContext(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var customers []string
	for _, b := range r.banned {
		if incident.SameName(b.Name, name) {
			customers = append(customers, b.CustomerName)
		}
	}
	return strings.Join(customers, ", ")
}

// IsBanned indica si el técnico aparece en la lista negra
func (r *Repository) IsBanned(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.banned {
		if incident.SameName(b.Name, name) {
			return true
		}
	}
	return false
}

// without devuelve una copia sin los elementos que cumplen match
func without[T any](items []T, match func(T) bool) ([]T, bool) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out, len(out) != len(items)
}
