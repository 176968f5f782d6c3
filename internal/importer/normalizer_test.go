package importer

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhelGc/fieldops/internal/incident"
)

var fixedNow = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

func fixedNormalizer() Normalizer {
	return Normalizer{Now: func() time.Time { return fixedNow }}
}

func TestNormalize_EmptyBuffers(t *testing.T) {
	out := fixedNormalizer().Normalize(NewColumns())
	require.NotNil(t, out)
	assert.Empty(t, out)

	// columnas presentes pero vacías también producen cero filas
	cols := NewColumns()
	cols.Set(ColVendorName, nil)
	assert.Empty(t, fixedNormalizer().Normalize(cols))
}

func TestNormalize_RaggedColumns(t *testing.T) {
	cols := NewColumns()
	cols.Set(ColVendorName, []string{"Acme"})
	cols.Set(ColTechnicianName, []string{"Jane", "Bob"})
	cols.Set(ColOverallScore, []string{"3"})

	out := fixedNormalizer().Normalize(cols)
	require.Len(t, out, 2)

	assert.Equal(t, incident.Incident{
		ID:                BatchID(fixedNow, 0),
		IncidentNumber:    "INC-TEMP-1",
		Date:              "2026-10-19",
		VendorName:        "Acme",
		TechnicianName:    "Jane",
		OverallScore:      3,
		PunctualityScore:  5,
		DeliverablesScore: 5,
		IsAbandoned:       false,
		Feedback:          "",
	}, out[0])

	assert.Equal(t, incident.Incident{
		ID:                BatchID(fixedNow, 1),
		IncidentNumber:    "INC-TEMP-2",
		Date:              "2026-10-19",
		VendorName:        "Unknown",
		TechnicianName:    "Bob",
		OverallScore:      5,
		PunctualityScore:  5,
		DeliverablesScore: 5,
	}, out[1])
}

func TestNormalize_RowCountIsLongestColumn(t *testing.T) {
	for _, lens := range [][]int{{1}, {0, 3}, {2, 7, 4}, {5, 5, 5, 5, 5, 5, 5, 5, 5}, {0, 0, 0, 250}} {
		cols := NewColumns()
		want := 0
		for i, n := range lens {
			values := make([]string, n)
			for j := range values {
				values[j] = fmt.Sprintf("v%d", j)
			}
			cols.Set(Keys()[i], values)
			if n > want {
				want = n
			}
		}
		assert.Len(t, fixedNormalizer().Normalize(cols), want, "lens=%v", lens)
	}
}

func TestNormalize_Scores(t *testing.T) {
	cols := NewColumns()
	cols.Set(ColOverallScore, []string{"4", "abc", "", "9", "4.5", "0", "-2", "3 stars"})
	cols.Set(ColFeedback, make([]string, 10))

	out := fixedNormalizer().Normalize(cols)
	require.Len(t, out, 10)

	got := make([]int, len(out))
	for i, r := range out {
		got[i] = r.OverallScore
	}
	// sin recorte al rango 1-5; celdas ausentes toman 5. "0" se conserva como 0
	// a propósito: la versión web hacía parseInt(x) || 5 y lo convertía en 5,
	// aquí sólo un valor no numérico cae al valor por defecto.
	assert.Equal(t, []int{4, 5, 5, 9, 4, 0, -2, 3, 5, 5}, got)
}

func TestNormalize_Abandoned(t *testing.T) {
	cols := NewColumns()
	cols.Set(ColIsAbandoned, []string{"Yes", "no", "SI", "maybe"})
	out := fixedNormalizer().Normalize(cols)

	got := make([]bool, len(out))
	for i, r := range out {
		got[i] = r.IsAbandoned
	}
	assert.Equal(t, []bool{true, false, true, false}, got)
}

func TestParseAbandoned(t *testing.T) {
	tests := map[string]bool{
		"yes":        true,
		"Yes":        true,
		"YES":        true,
		"si":         true,
		"Si":         true,
		"yes please": true,
		"eyes":       true,
		"no":         false,
		"":           false,
		"sí":         false,
		"si señor":   false,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseAbandoned(in), "input %q", in)
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"5", 5, true},
		{" 2 ", 2, true},
		{"+3", 3, true},
		{"-1", -1, true},
		{"12abc", 12, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseScore(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNormalize_VerbatimValues(t *testing.T) {
	cols := NewColumns()
	cols.Set(ColIncidentNumber, []string{"INC-9"})
	cols.Set(ColDate, []string{"not-a-date"})
	cols.Set(ColFeedback, []string{"late again"})
	cols.Set(ColPunctualityScore, []string{"2"})
	cols.Set(ColDeliverablesScore, []string{"1"})

	out := fixedNormalizer().Normalize(cols)
	require.Len(t, out, 1)
	assert.Equal(t, "INC-9", out[0].IncidentNumber)
	assert.Equal(t, "not-a-date", out[0].Date)
	assert.Equal(t, "late again", out[0].Feedback)
	assert.Equal(t, 2, out[0].PunctualityScore)
	assert.Equal(t, 1, out[0].DeliverablesScore)
}

func TestNormalize_EmptyCellsTakeDefaults(t *testing.T) {
	cols := NewColumns()
	cols.Set(ColIncidentNumber, []string{"", "INC-2"})
	cols.Set(ColDate, []string{""})
	cols.Set(ColVendorName, []string{""})
	cols.Set(ColTechnicianName, []string{""})

	out := fixedNormalizer().Normalize(cols)
	require.Len(t, out, 2)
	assert.Equal(t, "INC-TEMP-1", out[0].IncidentNumber)
	assert.Equal(t, "2026-10-19", out[0].Date)
	assert.Equal(t, DefaultVendorName, out[0].VendorName)
	assert.Equal(t, DefaultTechnicianName, out[0].TechnicianName)
	assert.Equal(t, "INC-2", out[1].IncidentNumber)
}

func TestNormalize_UniqueIDs(t *testing.T) {
	cols := NewColumns()
	cols.Set(ColTechnicianName, make([]string, 500))
	out := Normalizer{}.Normalize(cols)
	require.Len(t, out, 500)

	seen := make(map[string]bool, len(out))
	for _, r := range out {
		assert.False(t, seen[r.ID], "id repetido %s", r.ID)
		seen[r.ID] = true
	}
}

func TestNormalize_InjectedIDSource(t *testing.T) {
	cols := NewColumns()
	cols.Set(ColVendorName, []string{"A", "B"})

	n := Normalizer{
		Now:   func() time.Time { return fixedNow },
		NewID: func(_ time.Time, row int) string { return fmt.Sprintf("test-%d", row) },
	}
	out := n.Normalize(cols)
	require.Len(t, out, 2)
	assert.Equal(t, "test-0", out[0].ID)
	assert.Equal(t, "test-1", out[1].ID)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	cols := NewColumns()
	cols.Set(ColVendorName, []string{"Acme", "Beta"})
	before := cols.Clone()

	fixedNormalizer().Normalize(cols)
	assert.Equal(t, before, cols)
}
