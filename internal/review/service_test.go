package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhelGc/fieldops/internal/config"
	"github.com/PhelGc/fieldops/internal/evaluator"
	"github.com/PhelGc/fieldops/internal/importer"
	"github.com/PhelGc/fieldops/internal/incident"
	"github.com/PhelGc/fieldops/internal/jira"
	"github.com/PhelGc/fieldops/internal/repository"
	"github.com/PhelGc/fieldops/internal/storage"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type fakeAnalyzer struct {
	mu   sync.Mutex
	reqs []evaluator.Request
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req evaluator.Request) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return fmt.Sprintf("report for %s (%d)", req.EntityName, len(req.Incidents))
}

type notification struct {
	vendor string
	result incident.AnalysisResult
}

type fakeNotifier struct {
	mu       sync.Mutex
	analyses []notification
	imports  []string
	err      error
}

func (f *fakeNotifier) NotifyAnalysis(_ context.Context, vendor string, result incident.AnalysisResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses = append(f.analyses, notification{vendor: vendor, result: result})
	return f.err
}

func (f *fakeNotifier) NotifyImport(_ context.Context, count int, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports = append(f.imports, fmt.Sprintf("%d:%s", count, source))
	return f.err
}

func (f *fakeNotifier) Close() {}

type fakeSource struct {
	issues []*jira.Issue
	err    error
}

func (f fakeSource) GetIssues(context.Context) ([]*jira.Issue, error) {
	return f.issues, f.err
}

func newService(t *testing.T) (*Service, *fakeAnalyzer, *fakeNotifier) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	seq := 0
	repo, err := repository.Open(context.Background(), store, repository.Options{
		AdminUsername: "admin@example.com",
		AdminPassword: "2130",
		Now:           func() time.Time { return testNow },
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	require.NoError(t, err)

	analyzer := &fakeAnalyzer{}
	notifier := &fakeNotifier{}
	svc := New(repo, analyzer, notifier, Options{
		Normalizer:    importer.Normalizer{Now: func() time.Time { return testNow }},
		Concurrency:   2,
		DefaultVendor: "Reliable Infra",
		JiraFields:    config.JiraFieldMapping{Overall: "customfield_1"},
	})
	return svc, analyzer, notifier
}

func TestImportFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newService(t)

	values, err := svc.SetColumn(ctx, importer.ColIncidentNumber, "INC-1\r\n\n  INC-2  \n")
	require.NoError(t, err)
	assert.Equal(t, []string{"INC-1", "INC-2"}, values)

	_, err = svc.SetColumn(ctx, importer.ColTechnicianName, "Ana\nLuis\nMarta")
	require.NoError(t, err)
	_, err = svc.SetColumn(ctx, importer.ColOverallScore, "4\nbad")
	require.NoError(t, err)

	preview := svc.Preview()
	assert.Equal(t, 3, preview.Total)
	require.Len(t, preview.Rows, 3)
	assert.Equal(t, "INC-TEMP-3", preview.Rows[2].IncidentNumber)
	assert.Equal(t, 5, preview.Rows[1].OverallScore)

	// La vista previa no importa nada
	assert.Len(t, svc.Repository().Incidents(), 5)

	n, err := svc.CommitImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all := svc.Repository().Incidents()
	require.Len(t, all, 8)
	assert.Equal(t, "INC-1", all[5].IncidentNumber)
	assert.Equal(t, "Marta", all[7].TechnicianName)
	assert.Equal(t, "2026-10-19", all[7].Date)

	assert.Equal(t, 0, svc.Draft().MaxRows())
	assert.Equal(t, []string{"3:paste"}, notifier.imports)
}

func TestCommitImport_Empty(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newService(t)

	_, err := svc.CommitImport(ctx)
	assert.ErrorIs(t, err, importer.ErrEmptyImport)

	// Pegar sólo líneas vacías tampoco produce filas
	_, err = svc.SetColumn(ctx, importer.ColFeedback, "\n \n")
	require.NoError(t, err)
	_, err = svc.CommitImport(ctx)
	assert.ErrorIs(t, err, importer.ErrEmptyImport)

	assert.Len(t, svc.Repository().Incidents(), 5)
	assert.Empty(t, notifier.imports)
}

func TestClearColumns(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.SetColumn(ctx, importer.ColVendorName, "A\nB")
	require.NoError(t, err)
	_, err = svc.SetColumn(ctx, importer.ColDate, "2024-01-01")
	require.NoError(t, err)

	require.NoError(t, svc.ClearColumn(ctx, importer.ColVendorName))
	assert.Equal(t, 1, svc.Draft().MaxRows())

	require.NoError(t, svc.ClearColumns(ctx))
	assert.Equal(t, 0, svc.Preview().Total)
}

func TestAnalyze_Technician(t *testing.T) {
	ctx := context.Background()
	svc, analyzer, notifier := newService(t)

	_, err := svc.Repository().AddBanned(ctx, "john doe", "QuickFix Systems", "Walmart", "no show")
	require.NoError(t, err)
	_, err = svc.Repository().AddBanned(ctx, "John Doe", "QuickFix Systems", "Target", "late")
	require.NoError(t, err)

	result, err := svc.Analyze(ctx, incident.EntityTechnician, "John Doe")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalIncidents)
	assert.InDelta(t, 11.0/3, result.AvgOverall, 1e-9)
	assert.Equal(t, "Walmart, Target", result.BanContext)
	assert.Equal(t, "report for John Doe (3)", result.ReportText)

	require.Len(t, analyzer.reqs, 1)
	assert.Equal(t, "Walmart, Target", analyzer.reqs[0].BanContext)

	require.Len(t, notifier.analyses, 1)
	assert.Equal(t, "QuickFix Systems", notifier.analyses[0].vendor)
}

func TestAnalyze_Vendor(t *testing.T) {
	ctx := context.Background()
	svc, analyzer, notifier := newService(t)

	_, err := svc.Repository().AddBanned(ctx, "Reliable Infra", "", "Walmart", "")
	require.NoError(t, err)

	result, err := svc.Analyze(ctx, incident.EntityVendor, "Reliable Infra")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalIncidents)
	assert.Equal(t, 1, result.TotalAbandons)
	assert.Empty(t, result.BanContext)
	assert.Empty(t, analyzer.reqs[0].BanContext)
	assert.Equal(t, "Reliable Infra", notifier.analyses[0].vendor)
}

func TestAnalyze_ExactNameAndEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Analyze(ctx, incident.EntityVendor, "  ")
	assert.ErrorIs(t, err, ErrNoEntity)

	result, err := svc.Analyze(ctx, incident.EntityTechnician, "john doe")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalIncidents)
	assert.Equal(t, "report for john doe (0)", result.ReportText)
}

func TestAnalyze_NotifierErrorIsIgnored(t *testing.T) {
	svc, _, notifier := newService(t)
	notifier.err = errors.New("discord down")

	result, err := svc.Analyze(context.Background(), incident.EntityVendor, "QuickFix Systems")
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalIncidents)
}

func TestAnalyzeAll(t *testing.T) {
	svc, analyzer, notifier := newService(t)

	results := svc.AnalyzeAll(context.Background(), incident.EntityVendor)
	require.Len(t, results, 2)
	assert.Equal(t, "QuickFix Systems", results[0].EntityName)
	assert.Equal(t, "report for QuickFix Systems (3)", results[0].ReportText)
	assert.Equal(t, "Reliable Infra", results[1].EntityName)
	assert.Equal(t, "report for Reliable Infra (2)", results[1].ReportText)
	assert.Len(t, analyzer.reqs, 2)
	assert.Len(t, notifier.analyses, 2)

	techs := svc.AnalyzeAll(context.Background(), incident.EntityTechnician)
	require.Len(t, techs, 2)
	assert.Equal(t, "John Doe", techs[0].EntityName)
	assert.Equal(t, "Sarah Smith", techs[1].EntityName)
}

func TestSyncJira(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newService(t)

	source := fakeSource{issues: []*jira.Issue{
		{Key: "INC-2024-001", Assignee: "John Doe"},
		{
			Key:         "OPS-10",
			Assignee:    "Ana",
			Conclusion:  "done",
			CreatedDate: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			Fields:      map[string]any{"customfield_1": float64(2)},
		},
		{Key: "OPS-11"},
		{Key: "OPS-10"},
	}}

	res, err := svc.SyncJira(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Fetched: 4, Imported: 2, Skipped: 2}, res)

	all := svc.Repository().Incidents()
	require.Len(t, all, 7)
	ops10, ops11 := all[5], all[6]
	assert.Equal(t, "OPS-10", ops10.IncidentNumber)
	assert.Equal(t, "2024-06-01", ops10.Date)
	assert.Equal(t, "Reliable Infra", ops10.VendorName)
	assert.Equal(t, 2, ops10.OverallScore)
	assert.Equal(t, 5, ops10.PunctualityScore)
	assert.Equal(t, "done", ops10.Feedback)
	assert.Equal(t, "Unnamed", ops11.TechnicianName)
	assert.Equal(t, "2026-10-19", ops11.Date)
	assert.Equal(t, []string{"2:jira"}, notifier.imports)

	// Una segunda pasada no duplica
	res, err = svc.SyncJira(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Len(t, svc.Repository().Incidents(), 7)
}

func TestSyncJira_SourceError(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.SyncJira(context.Background(), fakeSource{err: errors.New("timeout")})
	assert.ErrorContains(t, err, "timeout")
}
