package jira

import (
	"github.com/PhelGc/fieldops/internal/config"
	"github.com/PhelGc/fieldops/internal/importer"
)

// ToColumns arma columnas del importador alineadas por fila, una fila por ticket.
// Los valores que el ticket no trae quedan como celdas vacías y el normalizador
// aplica el valor por defecto.
func ToColumns(issues []*Issue, mapping config.JiraFieldMapping, defaultVendor string) importer.Columns {
	cols := importer.NewColumns()
	values := make(map[importer.ColumnKey][]string)

	for _, issue := range issues {
		date := ""
		if !issue.CreatedDate.IsZero() {
			date = issue.CreatedDate.Format(importer.DateLayout)
		}

		vendor := custom(issue, mapping.Vendor)
		if vendor == "" {
			vendor = defaultVendor
		}

		row := map[importer.ColumnKey]string{
			importer.ColIncidentNumber:    issue.Key,
			importer.ColDate:              date,
			importer.ColVendorName:        vendor,
			importer.ColTechnicianName:    issue.Assignee,
			importer.ColOverallScore:      custom(issue, mapping.Overall),
			importer.ColPunctualityScore:  custom(issue, mapping.Punctuality),
			importer.ColDeliverablesScore: custom(issue, mapping.Deliverables),
			importer.ColIsAbandoned:       custom(issue, mapping.Abandoned),
			importer.ColFeedback:          issue.Conclusion,
		}
		for _, key := range importer.Keys() {
			values[key] = append(values[key], row[key])
		}
	}

	if len(issues) == 0 {
		return cols
	}
	for key, v := range values {
		cols.Set(key, v)
	}
	return cols
}

func custom(issue *Issue, field string) string {
	if field == "" {
		return ""
	}
	return FieldText(issue.Fields[field])
}
