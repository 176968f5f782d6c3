package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PhelGc/fieldops/internal/incident"
)

const (
	DefaultVendorName     = "Unknown"
	DefaultTechnicianName = "Unnamed"
	DefaultScore          = 5
	DateLayout            = "2006-01-02"

	// abandonedLocalToken afirmativo en español aceptado como "sí"
	abandonedLocalToken = "si"
)

// ErrEmptyImport el buffer no produjo ninguna fila; no hay nada que importar
var ErrEmptyImport = errors.New("no hay filas para importar")

// Clock fuente de la hora actual
type Clock func() time.Time

// IDFunc genera el identificador de la fila row de un lote iniciado en batch
type IDFunc func(batch time.Time, row int) string

// BatchID esquema por defecto: bulk-<milisegundos del lote>-<fila>
func BatchID(batch time.Time, row int) string {
	return fmt.Sprintf("bulk-%d-%d", batch.UnixMilli(), row)
}

// DefaultIncidentNumber número provisional para la fila row (base 0)
func DefaultIncidentNumber(row int) string {
	return fmt.Sprintf("INC-TEMP-%d", row+1)
}

// Normalizer arma registros completos a partir de columnas de distinto largo.
// El valor cero usa el reloj del sistema y BatchID.
type Normalizer struct {
	Now   Clock
	NewID IDFunc
}

// Normalize produce tantas incidencias como filas tenga la columna más larga.
// Cada celda faltante o inválida toma el valor por defecto de su campo; nunca falla.
func (n Normalizer) Normalize(cols Columns) []incident.Incident {
	rows := cols.MaxRows()
	records := make([]incident.Incident, 0, rows)
	if rows == 0 {
		return records
	}

	now := n.now()
	newID := n.NewID
	if newID == nil {
		newID = BatchID
	}
	today := now.Format(DateLayout)

	for i := 0; i < rows; i++ {
		records = append(records, incident.Incident{
			ID:                newID(now, i),
			IncidentNumber:    textOr(cols, ColIncidentNumber, i, DefaultIncidentNumber(i)),
			Date:              textOr(cols, ColDate, i, today),
			VendorName:        textOr(cols, ColVendorName, i, DefaultVendorName),
			TechnicianName:    textOr(cols, ColTechnicianName, i, DefaultTechnicianName),
			OverallScore:      scoreOr(cols, ColOverallScore, i),
			PunctualityScore:  scoreOr(cols, ColPunctualityScore, i),
			DeliverablesScore: scoreOr(cols, ColDeliverablesScore, i),
			IsAbandoned:       parseAbandoned(cols, i),
			Feedback:          textOr(cols, ColFeedback, i, ""),
		})
	}

	return records
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func textOr(cols Columns, key ColumnKey, i int, fallback string) string {
	if v, ok := cols.cell(key, i); ok && v != "" {
		return v
	}
	return fallback
}

func scoreOr(cols Columns, key ColumnKey, i int) int {
	v, _ := cols.cell(key, i)
	if score, ok := ParseScore(v); ok {
		return score
	}
	return DefaultScore
}

func parseAbandoned(cols Columns, i int) bool {
	v, _ := cols.cell(ColIsAbandoned, i)
	return ParseAbandoned(v)
}

// ParseAbandoned "yes" en cualquier parte del texto, o exactamente "si", sin distinguir mayúsculas
func ParseAbandoned(raw string) bool {
	v := strings.ToLower(raw)
	return strings.Contains(v, "yes") || v == abandonedLocalToken
}

// ParseScore lee el entero inicial del texto (signo opcional y dígitos),
// como "4.5" -> 4 o "3 stars" -> 3. No limita el rango 1–5.
func ParseScore(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		// valores absurdos se tratan como no numéricos
		if n > (1<<31)/10 {
			return 0, false
		}
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
