// Package importer convierte columnas pegadas de forma independiente en
// registros de incidencias alineados por fila.
package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnKey identifica una de las nueve columnas reconocidas
type ColumnKey string

const (
	ColIncidentNumber    ColumnKey = "incidentNumber"
	ColDate              ColumnKey = "date"
	ColVendorName        ColumnKey = "vendorName"
	ColTechnicianName    ColumnKey = "technicianName"
	ColOverallScore      ColumnKey = "overallScore"
	ColPunctualityScore  ColumnKey = "punctualityScore"
	ColDeliverablesScore ColumnKey = "deliverablesScore"
	ColIsAbandoned       ColumnKey = "isAbandoned"
	ColFeedback          ColumnKey = "feedback"
)

// ColumnSpec describe una columna del constructor
type ColumnSpec struct {
	Key         ColumnKey
	Label       string
	Placeholder string
}

// Specs columnas en el orden en que se muestran
var Specs = []ColumnSpec{
	{ColIncidentNumber, "Incidents #", "INC-001\nINC-002..."},
	{ColDate, "Dates", "2024-01-01\n2024-01-02..."},
	{ColVendorName, "Vendors", "Company A\nCompany B..."},
	{ColTechnicianName, "Technicians", "John Doe\nJane Smith..."},
	{ColOverallScore, "Overall Score (1-5)", "5\n4\n3..."},
	{ColPunctualityScore, "Punctuality (1-5)", "5\n5\n2..."},
	{ColDeliverablesScore, "Deliverables (1-5)", "4\n5\n5..."},
	{ColIsAbandoned, "Abandoned (Yes/No)", "No\nNo\nYes..."},
	{ColFeedback, "Feedback / Comments", "Good job\nLate\nIncomplete..."},
}

// Keys devuelve las claves en orden de despliegue
func Keys() []ColumnKey {
	keys := make([]ColumnKey, len(Specs))
	for i, s := range Specs {
		keys[i] = s.Key
	}
	return keys
}

// ParseColumnKey valida una clave de columna (coincidencia exacta)
func ParseColumnKey(s string) (ColumnKey, error) {
	for _, spec := range Specs {
		if string(spec.Key) == s {
			return spec.Key, nil
		}
	}
	return "", fmt.Errorf("columna desconocida %q", s)
}

// Label etiqueta legible de la columna
func (k ColumnKey) Label() string {
	for _, spec := range Specs {
		if spec.Key == k {
			return spec.Label
		}
	}
	return string(k)
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// ParsePaste divide el texto pegado por saltos de línea, recorta cada línea
// y descarta las vacías
func ParsePaste(text string) []string {
	values := []string{}
	for _, line := range lineBreak.Split(text, -1) {
		if v := strings.TrimSpace(line); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// Columns buffer de columnas: clave -> valores crudos en orden de pegado.
// Sólo se modifica reemplazando o limpiando columnas completas.
type Columns map[ColumnKey][]string

// NewColumns crea un buffer vacío
func NewColumns() Columns {
	return make(Columns, len(Specs))
}

// Set reemplaza la columna completa con una copia de values
func (c Columns) Set(key ColumnKey, values []string) {
	c[key] = append([]string(nil), values...)
}

// Get devuelve una copia de la columna
func (c Columns) Get(key ColumnKey) []string {
	return append([]string{}, c[key]...)
}

// Clear vacía una columna
func (c Columns) Clear(key ColumnKey) {
	delete(c, key)
}

// ClearAll vacía todas las columnas
func (c Columns) ClearAll() {
	for k := range c {
		delete(c, k)
	}
}

// Text devuelve la columna unida por saltos de línea, para volver a editarla
func (c Columns) Text(key ColumnKey) string {
	return strings.Join(c[key], "\n")
}

// Counts número de valores por columna
func (c Columns) Counts() map[ColumnKey]int {
	counts := make(map[ColumnKey]int, len(Specs))
	for _, k := range Keys() {
		counts[k] = len(c[k])
	}
	return counts
}

// MaxRows largo de la columna más larga
func (c Columns) MaxRows() int {
	rows := 0
	for _, values := range c {
		if len(values) > rows {
			rows = len(values)
		}
	}
	return rows
}

// Clone copia profunda del buffer
func (c Columns) Clone() Columns {
	out := make(Columns, len(c))
	for k, v := range c {
		out.Set(k, v)
	}
	return out
}

// cell devuelve el valor en la fila i, o "" y false si la columna se agotó
func (c Columns) cell(key ColumnKey, i int) (string, bool) {
	values := c[key]
	if i < len(values) {
		return values[i], true
	}
	return "", false
}
