package evaluator

import (
	"context"

	"github.com/PhelGc/fieldops/internal/incident"
)

// Textos que se devuelven en lugar del reporte
const (
	NoAnalysisText    = "No analysis generated."
	ErrorAnalysisText = "Error generating analysis. Please try again later."
)

// Request datos de un análisis de desempeño
type Request struct {
	EntityName string
	EntityType incident.EntityType
	Incidents  []incident.Incident
	BanContext string // clientes que vetaron al técnico; vacío si ninguno
}

// Analyzer servicio de análisis: siempre devuelve texto, nunca error
type Analyzer interface {
	Analyze(ctx context.Context, req Request) string
}

// Generator modelo de texto detrás del análisis
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
