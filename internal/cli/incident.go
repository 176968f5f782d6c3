package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PhelGc/fieldops/internal/importer"
	"github.com/PhelGc/fieldops/internal/incident"
	"github.com/PhelGc/fieldops/internal/repository"
)

func newIncidentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incident",
		Short: "Alta, consulta y baja de incidencias",
	}
	cmd.AddCommand(newIncidentAddCmd(a), newIncidentListCmd(a), newIncidentDeleteCmd(a))
	return cmd
}

func newIncidentAddCmd(a *app) *cobra.Command {
	var (
		inc       incident.Incident
		abandoned string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Registra una incidencia manualmente",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inc.IsAbandoned = importer.ParseAbandoned(abandoned)
			saved, err := a.repo.AddIncident(cmd.Context(), inc)
			switch {
			case errors.Is(err, repository.ErrUnknownVendor):
				return withOptions(err, a.repo.MasterVendorNames())
			case errors.Is(err, repository.ErrUnknownTechnician):
				return withOptions(err, a.repo.MasterTechMap()[vendorName(a, inc.VendorName)])
			case err != nil:
				return err
			}

			out := cmd.OutOrStdout()
			if a.repo.IsBanned(saved.TechnicianName) {
				fmt.Fprintf(out, "Warning: %s is BLACKLISTED (%s).\n",
					saved.TechnicianName, a.repo.BanContext(saved.TechnicianName))
			}
			fmt.Fprintf(out, "Record saved successfully. (%s)\n", saved.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&inc.IncidentNumber, "number", "", "número de incidencia")
	f.StringVar(&inc.Date, "date", "", "fecha YYYY-MM-DD (por defecto hoy)")
	f.StringVar(&inc.VendorName, "vendor", "", "proveedor")
	f.StringVar(&inc.TechnicianName, "technician", "", "técnico")
	f.IntVar(&inc.OverallScore, "overall", importer.DefaultScore, "puntaje general (1-5)")
	f.IntVar(&inc.PunctualityScore, "punctuality", importer.DefaultScore, "puntualidad (1-5)")
	f.IntVar(&inc.DeliverablesScore, "deliverables", importer.DefaultScore, "entregables (1-5)")
	f.StringVar(&abandoned, "abandoned", "No", "abandono (Yes/No)")
	f.StringVar(&inc.Feedback, "feedback", "", "comentarios")
	return cmd
}

// vendorName nombre registrado del proveedor, para buscar sus técnicos
func vendorName(a *app, name string) string {
	for _, v := range a.repo.MasterVendorNames() {
		if incident.SameName(v, name) {
			return v
		}
	}
	return name
}

func newIncidentListCmd(a *app) *cobra.Command {
	var vendor, technician string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista las incidencias registradas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			incidents := a.repo.Incidents()
			if vendor != "" {
				incidents = incident.Filter(incidents, incident.EntityVendor, vendor)
			}
			if technician != "" {
				incidents = incident.Filter(incidents, incident.EntityTechnician, technician)
			}
			if len(incidents) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No records found.")
				return nil
			}
			return writeIncidents(cmd.OutOrStdout(), incidents)
		},
	}
	cmd.Flags().StringVar(&vendor, "vendor", "", "filtrar por proveedor (nombre exacto)")
	cmd.Flags().StringVar(&technician, "technician", "", "filtrar por técnico (nombre exacto)")
	return cmd
}

func newIncidentDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Elimina una incidencia por id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.repo.DeleteIncident(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record %s deleted.\n", args[0])
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Resumen de la base de incidencias",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := incident.Summarize(a.repo.Incidents())
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Total Incidents\t%d\n", s.Total)
			fmt.Fprintf(tw, "Abandons\t%d\n", s.Abandons)
			fmt.Fprintf(tw, "Avg Score\t%s\n", incident.FormatAvg(s.AvgScore))
			fmt.Fprintf(tw, "High Performance\t%d%%\n", s.HighPerfPercent)
			return tw.Flush()
		},
	}
}
