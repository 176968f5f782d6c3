package evaluator

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/PhelGc/fieldops/internal/incident"
)

//go:embed prompt.tmpl
var defaultPrompt string

// PromptLoader plantilla del prompt de análisis.
// Se carga una sola vez al iniciar para evitar I/O repetido en cada análisis.
type PromptLoader struct {
	tmpl *template.Template
}

// promptData valores disponibles dentro de la plantilla
type promptData struct {
	EntityType      incident.EntityType
	EntityName      string
	BanMessage      string
	IncidentContext string
}

// DefaultPrompts usa la plantilla embebida
func DefaultPrompts() *PromptLoader {
	return &PromptLoader{tmpl: template.Must(template.New("analysis").Parse(defaultPrompt))}
}

// LoadPrompts lee una plantilla alternativa desde disco; con path vacío usa la embebida.
// Falla explícitamente si el archivo no existe o no es una plantilla válida.
func LoadPrompts(path string) (*PromptLoader, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no se pudo cargar prompt (%s): %w", path, err)
	}
	tmpl, err := template.New("analysis").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("prompt inválido (%s): %w", path, err)
	}
	return &PromptLoader{tmpl: tmpl}, nil
}

// Build arma el prompt para una solicitud
func (p *PromptLoader) Build(req Request) (string, error) {
	var b strings.Builder
	err := p.tmpl.Execute(&b, promptData{
		EntityType:      req.EntityType,
		EntityName:      req.EntityName,
		BanMessage:      BanMessage(req.BanContext),
		IncidentContext: IncidentContext(req.Incidents),
	})
	if err != nil {
		return "", fmt.Errorf("error armando prompt: %w", err)
	}
	return b.String(), nil
}

// BanMessage advertencia de lista negra; vacía si no aplica
func BanMessage(banContext string) string {
	if banContext == "" {
		return ""
	}
	return fmt.Sprintf("IMPORTANT: This technician is currently BLACKLISTED for the following projects: %s.", banContext)
}

// IncidentContext bloque de datos por incidencia, separados por "\n---\n"
func IncidentContext(incidents []incident.Incident) string {
	blocks := make([]string, len(incidents))
	for i, inc := range incidents {
		abandoned := "No"
		if inc.IsAbandoned {
			abandoned = "Yes"
		}
		blocks[i] = fmt.Sprintf(
			"Incident: %s\nDate: %s\nScores: Overall=%d, Punctuality=%d, Deliverables=%d\nAbandoned: %s\nFeedback: %s",
			inc.IncidentNumber, inc.Date,
			inc.OverallScore, inc.PunctualityScore, inc.DeliverablesScore,
			abandoned, inc.Feedback,
		)
	}
	return strings.Join(blocks, "\n---\n")
}
