package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PhelGc/fieldops/internal/importer"
	"github.com/PhelGc/fieldops/internal/repository"
)

// userMessages texto mostrado para cada error conocido
var userMessages = []struct {
	err  error
	text string
}{
	{repository.ErrMissingEntity, "Please select both a Vendor and a Technician."},
	{repository.ErrUnknownVendor, "Vendor is not in the master list."},
	{repository.ErrUnknownTechnician, "Technician is not registered for this vendor."},
	{repository.ErrVendorExists, "Vendor already exists."},
	{repository.ErrTechnicianExists, "Technician already exists for this vendor."},
	{repository.ErrUserExists, "Username already exists."},
	{repository.ErrInvalidCredentials, "Invalid username or password."},
	{repository.ErrInvalidBackup, "Invalid data format."},
	{importer.ErrEmptyImport, "No rows to import."},
}

// errorMessage traduce un error al texto que ve el usuario; el detalle
// agregado al envolver el error se conserva
func errorMessage(err error) string {
	for _, m := range userMessages {
		if !errors.Is(err, m.err) {
			continue
		}
		detail, ok := strings.CutPrefix(err.Error(), m.err.Error())
		detail = strings.TrimSpace(strings.TrimPrefix(detail, ":"))
		if !ok || detail == "" {
			return m.text
		}
		return m.text + " " + detail
	}
	return err.Error()
}

// withOptions agrega al error los valores aceptados
func withOptions(err error, options []string) error {
	if len(options) == 0 {
		return err
	}
	return fmt.Errorf("%w (options: %s)", err, strings.Join(options, ", "))
}
