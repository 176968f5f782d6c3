package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/PhelGc/fieldops/internal/incident"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// writeIncidents tabla de incidencias, una por línea
func writeIncidents(w io.Writer, incidents []incident.Incident) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tINCIDENT\tDATE\tVENDOR\tTECHNICIAN\tOVERALL\tPUNCT.\tDELIV.\tSTATUS")
	for _, inc := range incidents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			inc.ID, inc.IncidentNumber, inc.Date, inc.VendorName, inc.TechnicianName,
			inc.OverallScore, inc.PunctualityScore, inc.DeliverablesScore, incident.StatusLabel(inc))
	}
	return tw.Flush()
}

// writeAnalysis encabezado numérico más el texto del reporte
func writeAnalysis(w io.Writer, r incident.AnalysisResult) {
	fmt.Fprintf(w, "%s: %s\n", r.EntityType, r.EntityName)
	if r.Banned() {
		fmt.Fprintf(w, "BLACKLISTED: %s\n", r.BanContext)
	}
	fmt.Fprintf(w, "Incidents: %d  Abandons: %d  Overall: %s  Punctuality: %s  Deliverables: %s\n",
		r.TotalIncidents, r.TotalAbandons,
		incident.FormatAvg(r.AvgOverall), incident.FormatAvg(r.AvgPunctuality), incident.FormatAvg(r.AvgDeliverables))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w, r.ReportText)
}
