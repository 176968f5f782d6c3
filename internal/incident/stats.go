package incident

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Summary estadísticas generales de la base de incidencias
type Summary struct {
	Total           int
	Abandons        int
	AvgScore        float64
	HighPerfPercent int // % de incidencias con puntaje general >= 4
}

// Summarize calcula las estadísticas del tablero principal
func Summarize(incidents []Incident) Summary {
	s := Summary{Total: len(incidents)}
	if s.Total == 0 {
		return s
	}

	sum, highPerf := 0, 0
	for _, inc := range incidents {
		sum += inc.OverallScore
		if inc.IsAbandoned {
			s.Abandons++
		}
		if inc.OverallScore >= 4 {
			highPerf++
		}
	}

	s.AvgScore = float64(sum) / float64(s.Total)
	s.HighPerfPercent = int(math.Round(float64(highPerf) / float64(s.Total) * 100))
	return s
}

// Aggregate llena la parte numérica de un AnalysisResult
func Aggregate(name string, entityType EntityType, incidents []Incident) AnalysisResult {
	r := AnalysisResult{
		EntityName:     name,
		EntityType:     entityType,
		TotalIncidents: len(incidents),
	}
	if len(incidents) == 0 {
		return r
	}

	var overall, punctuality, deliverables int
	for _, inc := range incidents {
		overall += inc.OverallScore
		punctuality += inc.PunctualityScore
		deliverables += inc.DeliverablesScore
		if inc.IsAbandoned {
			r.TotalAbandons++
		}
	}

	n := float64(len(incidents))
	r.AvgOverall = float64(overall) / n
	r.AvgPunctuality = float64(punctuality) / n
	r.AvgDeliverables = float64(deliverables) / n
	return r
}

// Filter devuelve las incidencias del técnico o proveedor indicado (comparación exacta)
func Filter(incidents []Incident, entityType EntityType, name string) []Incident {
	var out []Incident
	for _, inc := range incidents {
		field := inc.VendorName
		if entityType == EntityTechnician {
			field = inc.TechnicianName
		}
		if field == name {
			out = append(out, inc)
		}
	}
	return out
}

// UniqueSorted devuelve los valores distintos ordenados
func UniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// FormatAvg formatea un promedio con un decimal
func FormatAvg(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// StatusLabel etiqueta de estado usada en la tabla de registros
func StatusLabel(inc Incident) string {
	if inc.IsAbandoned {
		return "Abandoned"
	}
	return "Completed"
}

// ScoreBand clasifica un puntaje: high (>=4), medium (>=3) o low
func ScoreBand(score int) string {
	switch {
	case score >= 4:
		return "high"
	case score >= 3:
		return "medium"
	default:
		return "low"
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameName compara nombres sin distinguir mayúsculas
func SameName(a, b string) bool {
	return normalizeKey(a) == normalizeKey(b)
}
