// Package review coordina el flujo de la aplicación: columnas pegadas,
// importación, análisis de desempeño y sincronización con Jira.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/config"
	"github.com/PhelGc/fieldops/internal/discord"
	"github.com/PhelGc/fieldops/internal/evaluator"
	"github.com/PhelGc/fieldops/internal/importer"
	"github.com/PhelGc/fieldops/internal/incident"
	"github.com/PhelGc/fieldops/internal/jira"
	"github.com/PhelGc/fieldops/internal/repository"
)

// ErrNoEntity no se indicó técnico o proveedor a analizar
var ErrNoEntity = errors.New("falta el nombre del técnico o proveedor")

// IssueSource origen de tickets de Jira
type IssueSource interface {
	GetIssues(ctx context.Context) ([]*jira.Issue, error)
}

// Options dependencias opcionales del servicio
type Options struct {
	Normalizer    importer.Normalizer
	Concurrency   int // análisis simultáneos en AnalyzeAll
	JiraFields    config.JiraFieldMapping
	DefaultVendor string // proveedor para tickets sin el campo
	Logger        *zap.Logger
}

// Service servicio de aplicación sobre el repositorio
type Service struct {
	repo     *repository.Repository
	analyzer evaluator.Analyzer
	notifier discord.Notifier
	opts     Options
}

// New crea el servicio. notifier nil equivale a no notificar.
func New(repo *repository.Repository, analyzer evaluator.Analyzer, notifier discord.Notifier, opts Options) *Service {
	if notifier == nil {
		notifier = discord.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Service{repo: repo, analyzer: analyzer, notifier: notifier, opts: opts}
}

// Repository acceso directo para consultas y administración
func (s *Service) Repository() *repository.Repository {
	return s.repo
}

// Draft columnas pegadas pendientes de importar
func (s *Service) Draft() importer.Columns {
	return s.repo.Draft()
}

// SetColumn reemplaza una columna completa con el texto pegado y devuelve los valores guardados
func (s *Service) SetColumn(ctx context.Context, key importer.ColumnKey, text string) ([]string, error) {
	values := importer.ParsePaste(text)
	if err := s.repo.SaveDraftColumn(ctx, key, values); err != nil {
		return nil, fmt.Errorf("error guardando columna %s: %w", key, err)
	}
	return values, nil
}

// ClearColumn vacía una columna del borrador
func (s *Service) ClearColumn(ctx context.Context, key importer.ColumnKey) error {
	return s.repo.ClearDraft(ctx, key)
}

// ClearColumns vacía todo el borrador
func (s *Service) ClearColumns(ctx context.Context) error {
	return s.repo.ClearAllDrafts(ctx)
}

// Preview normaliza el borrador sin guardar nada
func (s *Service) Preview() importer.Preview {
	return importer.NewPreview(s.opts.Normalizer.Normalize(s.repo.Draft()))
}

// CommitImport normaliza el borrador, lo agrega como un solo lote y limpia el borrador.
// Devuelve la cantidad importada; ErrEmptyImport si no había filas.
func (s *Service) CommitImport(ctx context.Context) (int, error) {
	records := s.opts.Normalizer.Normalize(s.repo.Draft())
	if err := s.importBatch(ctx, records, "paste"); err != nil {
		return 0, err
	}

	if err := s.repo.ClearAllDrafts(ctx); err != nil {
		// El lote ya quedó guardado; sólo queda el borrador viejo
		s.opts.Logger.Warn("Error limpiando borrador tras importar", zap.Error(err))
	}
	return len(records), nil
}

func (s *Service) importBatch(ctx context.Context, records []incident.Incident, source string) error {
	if len(records) == 0 {
		return importer.ErrEmptyImport
	}
	if err := s.repo.AppendIncidents(ctx, records); err != nil {
		return err
	}
	if err := s.notifier.NotifyImport(ctx, len(records), source); err != nil {
		s.opts.Logger.Warn("Error notificando importación", zap.Error(err))
	}
	return nil
}

// Analyze corre el análisis de un técnico o proveedor sobre los registros guardados
func (s *Service) Analyze(ctx context.Context, entityType incident.EntityType, name string) (incident.AnalysisResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return incident.AnalysisResult{}, ErrNoEntity
	}

	req := s.request(entityType, name)
	result := s.result(req)
	result.ReportText = s.analyzer.Analyze(ctx, req)
	s.notify(ctx, result, req.Incidents)
	return result, nil
}

// AnalyzeAll analiza todos los proveedores (o técnicos) presentes en los registros.
// Los resultados respetan el orden alfabético de los nombres.
func (s *Service) AnalyzeAll(ctx context.Context, entityType incident.EntityType) []incident.AnalysisResult {
	var names []string
	if entityType == incident.EntityTechnician {
		names = s.repo.TechniciansInRecords("")
	} else {
		names = s.repo.VendorsInRecords()
	}

	reqs := make([]evaluator.Request, len(names))
	for i, name := range names {
		reqs[i] = s.request(entityType, name)
	}

	s.opts.Logger.Info("Iniciando análisis masivo",
		zap.String("type", string(entityType)), zap.Int("entities", len(reqs)), zap.Int("concurrency", s.opts.Concurrency))

	reports := evaluator.AnalyzeMany(ctx, s.analyzer, reqs, s.opts.Concurrency)
	results := make([]incident.AnalysisResult, len(reqs))
	for i, req := range reqs {
		results[i] = s.result(req)
		results[i].ReportText = reports[i]
		s.notify(ctx, results[i], req.Incidents)
	}
	return results
}

// request filtra por nombre exacto; el contexto de lista negra sólo aplica a técnicos
func (s *Service) request(entityType incident.EntityType, name string) evaluator.Request {
	req := evaluator.Request{
		EntityName: name,
		EntityType: entityType,
		Incidents:  s.repo.Filter(entityType, name),
	}
	if entityType == incident.EntityTechnician {
		req.BanContext = s.repo.BanContext(name)
	}
	return req
}

func (s *Service) result(req evaluator.Request) incident.AnalysisResult {
	result := incident.Aggregate(req.EntityName, req.EntityType, req.Incidents)
	result.BanContext = req.BanContext
	return result
}

func (s *Service) notify(ctx context.Context, result incident.AnalysisResult, incidents []incident.Incident) {
	vendor := result.EntityName
	if result.EntityType == incident.EntityTechnician {
		vendor = ""
		if len(incidents) > 0 {
			vendor = incidents[0].VendorName
		}
	}
	if err := s.notifier.NotifyAnalysis(ctx, vendor, result); err != nil {
		s.opts.Logger.Warn("Error notificando análisis",
			zap.String("entity", result.EntityName), zap.Error(err))
	}
}

// SyncResult resumen de una sincronización con Jira
type SyncResult struct {
	Fetched  int
	Imported int
	Skipped  int
}

// SyncJira trae tickets de Jira, omite los números de incidencia ya guardados
// e importa el resto a través del normalizador
func (s *Service) SyncJira(ctx context.Context, source IssueSource) (SyncResult, error) {
	s.opts.Logger.Info("Sincronizando incidencias de Jira...")

	issues, err := source.GetIssues(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("error obteniendo incidencias: %w", err)
	}

	result := SyncResult{Fetched: len(issues)}
	seen := make(map[string]bool)
	var fresh []*jira.Issue
	for _, issue := range issues {
		if seen[issue.Key] || s.repo.HasIncidentNumber(issue.Key) {
			s.opts.Logger.Debug("Incidencia ya existe, omitiendo", zap.String("key", issue.Key))
			result.Skipped++
			continue
		}
		seen[issue.Key] = true
		fresh = append(fresh, issue)
	}

	if len(fresh) > 0 {
		cols := jira.ToColumns(fresh, s.opts.JiraFields, s.opts.DefaultVendor)
		records := s.opts.Normalizer.Normalize(cols)
		if err := s.importBatch(ctx, records, "jira"); err != nil {
			return result, fmt.Errorf("error guardando incidencias de Jira: %w", err)
		}
		result.Imported = len(records)
	}

	s.opts.Logger.Info("Sincronización completada",
		zap.Int("new", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}
