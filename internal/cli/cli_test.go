package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/config"
	"github.com/PhelGc/fieldops/internal/jira"
	"github.com/PhelGc/fieldops/internal/repository"
)

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type echoGenerator struct{}

func (echoGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	return "REPORT\n" + firstLine(prompt, "Analyze"), nil
}

func firstLine(text, prefix string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}

type staticIssues []*jira.Issue

func (s staticIssues) GetIssues(context.Context) ([]*jira.Issue, error) {
	return s, nil
}

func testEnv(t *testing.T, driver string) *Env {
	t.Helper()
	dir := t.TempDir()
	return &Env{
		Config: &config.Config{
			Storage: config.StorageConfig{
				Driver:     driver,
				BasePath:   filepath.Join(dir, "data"),
				SQLitePath: filepath.Join(dir, "fieldops.db"),
			},
			Admin: config.AdminConfig{Username: "admin@example.com", Password: "2130"},
			Jira:  config.JiraConfig{DefaultVendor: "Reliable Infra"},
			Sync:  config.SyncConfig{IntervalMinutes: 5},
		},
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return testNow },
		Generator: echoGenerator{},
	}
}

func run(t *testing.T, env *Env, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), env, args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func mustRun(t *testing.T, env *Env, stdin string, args ...string) string {
	t.Helper()
	out, err := run(t, env, stdin, args...)
	require.NoError(t, err, out)
	return out
}

func TestImportCommands(t *testing.T) {
	env := testEnv(t, "file")

	out := mustRun(t, env, "INC-9\nINC-10\n", "import", "set", "incidentNumber")
	assert.Contains(t, out, "Incidents #: 2 values")

	path := filepath.Join(t.TempDir(), "techs.txt")
	require.NoError(t, os.WriteFile(path, []byte("Ana\r\nLuis\r\nMarta\r\n"), 0644))
	mustRun(t, env, "", "import", "set", "technicianName", path)

	out = mustRun(t, env, "", "import", "show")
	assert.Contains(t, out, "Rows: 3")

	out = mustRun(t, env, "", "import", "show", "technicianName")
	assert.Equal(t, "Ana\nLuis\nMarta\n", out)

	out = mustRun(t, env, "", "import", "preview")
	assert.Contains(t, out, "INC-TEMP-3")
	assert.Contains(t, out, "Unknown")
	assert.Contains(t, out, "3 rows.")

	out = mustRun(t, env, "", "import", "commit")
	assert.Contains(t, out, "3 records imported successfully.")

	out = mustRun(t, env, "", "import", "preview")
	assert.Contains(t, out, "No rows to import.")

	_, err := run(t, env, "", "import", "commit")
	assert.Error(t, err)

	_, err = run(t, env, "x", "import", "set", "bogus")
	assert.ErrorContains(t, err, "columna desconocida")

	out = mustRun(t, env, "", "stats")
	assert.Regexp(t, `Total Incidents\s+8\n`, out)
}

func TestImportCommands_LargeDraft(t *testing.T) {
	env := testEnv(t, "file")

	numbers := make([]string, 150)
	for i := range numbers {
		numbers[i] = fmt.Sprintf("INC-%03d", i+1)
	}
	mustRun(t, env, strings.Join(numbers, "\n"), "import", "set", "incidentNumber")

	out := mustRun(t, env, "", "import", "preview")
	assert.Contains(t, out, "Showing 100 of 150 rows.")
	assert.Contains(t, out, "INC-100")
	assert.NotContains(t, out, "INC-101")

	// la vista previa recorta sólo lo que se muestra
	out = mustRun(t, env, "", "import", "commit")
	assert.Contains(t, out, "150 records imported successfully.")
	assert.Regexp(t, `Total Incidents\s+155\n`, mustRun(t, env, "", "stats"))
	assert.Contains(t, mustRun(t, env, "", "incident", "list"), "INC-150")
}

func TestImportClear(t *testing.T) {
	env := testEnv(t, "file")

	mustRun(t, env, "a\nb", "import", "set", "vendorName")
	mustRun(t, env, "1", "import", "set", "overallScore")

	out := mustRun(t, env, "", "import", "clear", "vendorName")
	assert.Contains(t, out, "Vendors cleared.")
	assert.Contains(t, mustRun(t, env, "", "import", "show"), "Rows: 1")

	mustRun(t, env, "", "import", "clear")
	assert.Contains(t, mustRun(t, env, "", "import", "show"), "Rows: 0")
}

func TestIncidentCommands(t *testing.T) {
	env := testEnv(t, "sqlite")

	_, err := run(t, env, "", "incident", "add", "--number", "INC-X", "--vendor", "QuickFix Systems")
	assert.ErrorIs(t, err, repository.ErrMissingEntity)

	out := mustRun(t, env, "", "incident", "add",
		"--number", "INC-X", "--vendor", "QuickFix Systems", "--technician", "John Doe",
		"--overall", "2", "--abandoned", "yes", "--feedback", "left early")
	assert.Contains(t, out, "Record saved successfully.")

	id := fmt.Sprintf("manual-%d", testNow.UnixMilli())
	assert.Contains(t, out, id)

	out = mustRun(t, env, "", "incident", "list", "--technician", "John Doe")
	assert.Contains(t, out, "INC-X")
	assert.Contains(t, out, "2026-10-19")
	assert.Contains(t, out, "Abandoned")
	assert.NotContains(t, out, "Sarah Smith")

	mustRun(t, env, "", "incident", "delete", id)
	out = mustRun(t, env, "", "incident", "list")
	assert.NotContains(t, out, "INC-X")

	_, err = run(t, env, "", "incident", "delete", "nope")
	assert.ErrorIs(t, err, repository.ErrIncidentNotFound)
}

func TestIncidentAdd_MasterLists(t *testing.T) {
	env := testEnv(t, "file")

	_, err := run(t, env, "", "incident", "add", "--vendor", "Nowhere LLC", "--technician", "Ghost Tech")
	assert.ErrorIs(t, err, repository.ErrUnknownVendor)
	assert.ErrorContains(t, err, "options: QuickFix Systems, Reliable Infra")

	_, err = run(t, env, "", "incident", "add", "--vendor", "quickfix systems", "--technician", "Sarah Smith")
	assert.ErrorIs(t, err, repository.ErrUnknownTechnician)
	assert.ErrorContains(t, err, "options: John Doe")

	out := mustRun(t, env, "", "incident", "add", "--vendor", "QuickFix Systems", "--technician", "John Doe")
	assert.NotContains(t, out, "Warning")

	mustRun(t, env, "", "admin", "--user", "admin@example.com", "--password", "2130",
		"ban", "add", "John Doe", "--customer", "Walmart")
	out = mustRun(t, env, "", "incident", "add", "--vendor", "QuickFix Systems", "--technician", "john doe")
	assert.Contains(t, out, "Warning: John Doe is BLACKLISTED (Walmart).")
	assert.Contains(t, out, "Record saved successfully.")
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{repository.ErrInvalidCredentials, "Invalid username or password."},
		{fmt.Errorf("%w: bad json", repository.ErrInvalidBackup), "Invalid data format. bad json"},
		{fmt.Errorf("restaurando: %w", repository.ErrInvalidBackup), "Invalid data format."},
		{withOptions(fmt.Errorf("%w: Acme", repository.ErrUnknownVendor), []string{"A", "B"}),
			"Vendor is not in the master list. Acme (options: A, B)"},
		{withOptions(repository.ErrVendorExists, nil), "Vendor already exists."},
		{errors.New("otro error"), "otro error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorMessage(tt.err))
	}
}

func TestAnalyzeCommands(t *testing.T) {
	env := testEnv(t, "file")

	mustRun(t, env, "", "admin", "--user", "admin@example.com", "--password", "2130",
		"ban", "add", "John Doe", "--customer", "Walmart")

	out := mustRun(t, env, "", "analyze", "technician", "John", "Doe")
	assert.Contains(t, out, "Technician: John Doe")
	assert.Contains(t, out, "BLACKLISTED: Walmart")
	assert.Contains(t, out, "Incidents: 3")
	assert.Contains(t, out, "Analyze the following dataset for Technician: John Doe.")

	out = mustRun(t, env, "", "analyze", "all", "--type", "vendor")
	assert.Contains(t, out, "Vendor: QuickFix Systems")
	assert.Contains(t, out, "Vendor: Reliable Infra")
	assert.Less(t, strings.Index(out, "QuickFix"), strings.Index(out, "Reliable"))

	_, err := run(t, env, "", "analyze", "all", "--type", "robot")
	assert.ErrorContains(t, err, "tipo desconocido")
}

func TestAnalyze_WithoutAPIKey(t *testing.T) {
	env := testEnv(t, "file")
	env.Generator = nil

	out := mustRun(t, env, "", "analyze", "vendor", "Reliable Infra")
	assert.Contains(t, out, "Error generating analysis. Please try again later.")
}

func TestAdminRequiresCredentials(t *testing.T) {
	env := testEnv(t, "file")

	_, err := run(t, env, "", "admin", "vendor", "list")
	assert.ErrorIs(t, err, repository.ErrInvalidCredentials)

	_, err = run(t, env, "", "admin", "--user", "admin@example.com", "--password", "bad", "vendor", "list")
	assert.ErrorIs(t, err, repository.ErrInvalidCredentials)

	t.Setenv("FIELDOPS_USER", "admin@example.com")
	t.Setenv("FIELDOPS_PASSWORD", "2130")
	out := mustRun(t, env, "", "admin", "vendor", "list")
	assert.Contains(t, out, "QuickFix Systems")
}

func TestAdminMasterLists(t *testing.T) {
	env := testEnv(t, "file")
	t.Setenv("FIELDOPS_USER", "admin@example.com")
	t.Setenv("FIELDOPS_PASSWORD", "2130")

	mustRun(t, env, "", "admin", "vendor", "add", "Acme Field")
	_, err := run(t, env, "", "admin", "vendor", "add", "acme field")
	assert.ErrorIs(t, err, repository.ErrVendorExists)

	_, err = run(t, env, "", "admin", "technician", "add", "Ana", "--vendor", "Vendor Not In Master")
	assert.ErrorIs(t, err, repository.ErrUnknownVendor)

	mustRun(t, env, "", "admin", "technician", "add", "Ana", "--vendor", "Acme Field")
	_, err = run(t, env, "", "admin", "technician", "add", "ANA", "--vendor", "Acme Field")
	assert.ErrorIs(t, err, repository.ErrTechnicianExists)

	out := mustRun(t, env, "", "admin", "technician", "list")
	assert.Contains(t, out, "Ana")

	mustRun(t, env, "", "admin", "user", "add", "ops@example.com", "s3cret")
	out = mustRun(t, env, "", "admin", "user", "list")
	assert.Contains(t, out, "ops@example.com")
	assert.NotContains(t, out, "s3cret")

	out = mustRun(t, env, "", "admin", "--user", "ops@example.com", "--password", "s3cret", "ban", "list")
	assert.Contains(t, out, "CUSTOMER")
}

func TestBackupCommands(t *testing.T) {
	env := testEnv(t, "file")
	t.Setenv("FIELDOPS_USER", "admin@example.com")
	t.Setenv("FIELDOPS_PASSWORD", "2130")

	out := mustRun(t, env, "", "admin", "backup", "export", "--out", "-")
	var backup repository.Backup
	require.NoError(t, json.Unmarshal([]byte(out), &backup))
	assert.Len(t, backup.Incidents, 5)
	assert.Equal(t, "2026-10-19T09:00:00.000Z", backup.ExportDate)

	file := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, env, "", "admin", "backup", "export", "--out", file)

	mustRun(t, env, "", "admin", "records", "clear", "--yes")
	assert.Contains(t, mustRun(t, env, "", "incident", "list"), "No records found.")

	_, err := run(t, env, "", "admin", "backup", "restore", file)
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	out = mustRun(t, env, "", "admin", "backup", "restore", file, "--yes")
	assert.Contains(t, out, "Restore complete!")
	assert.Regexp(t, `Total Incidents\s+5\n`, mustRun(t, env, "", "stats"))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"incidents":[]}`), 0644))
	_, err = run(t, env, "", "admin", "backup", "restore", bad, "--yes")
	assert.ErrorIs(t, err, repository.ErrInvalidBackup)

	_, err = run(t, env, "", "admin", "records", "clear")
	assert.ErrorIs(t, err, ErrConfirmationRequired)
}

func TestJiraSync(t *testing.T) {
	env := testEnv(t, "file")
	env.IssueSource = staticIssues{
		{Key: "OPS-1", Assignee: "Ana", CreatedDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Key: "INC-2024-001"},
	}

	out := mustRun(t, env, "", "jira", "sync")
	assert.Contains(t, out, "Sync complete: 2 fetched, 1 imported, 1 skipped.")

	out = mustRun(t, env, "", "incident", "list", "--vendor", "Reliable Infra")
	assert.Contains(t, out, "OPS-1")
}

func TestJiraSync_NotConfigured(t *testing.T) {
	env := testEnv(t, "file")
	_, err := run(t, env, "", "jira", "sync")
	assert.ErrorIs(t, err, jira.ErrNotConfigured)
}

func TestUnknownStorageDriver(t *testing.T) {
	env := testEnv(t, "redis")
	_, err := run(t, env, "", "stats")
	assert.ErrorContains(t, err, "STORAGE_DRIVER desconocido")
}
