package importer

import "github.com/PhelGc/fieldops/internal/incident"

// PreviewLimit máximo de filas que se muestran en la vista previa
const PreviewLimit = 100

// Preview vista previa de un lote: las primeras filas y el total calculado
type Preview struct {
	Rows  []incident.Incident
	Total int
}

// Truncated indica si hay filas que no se muestran
func (p Preview) Truncated() bool {
	return p.Total > len(p.Rows)
}

// NewPreview recorta sólo la vista; records no se modifica y es lo que se importa
func NewPreview(records []incident.Incident) Preview {
	rows := records
	if len(rows) > PreviewLimit {
		rows = rows[:PreviewLimit:PreviewLimit]
	}
	return Preview{Rows: rows, Total: len(records)}
}
