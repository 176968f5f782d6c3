package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PhelGc/fieldops/internal/incident"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Análisis de desempeño con IA",
	}

	entity := func(t incident.EntityType, use, short string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <name>",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				result, err := a.svc.Analyze(cmd.Context(), t, strings.Join(args, " "))
				if err != nil {
					return err
				}
				writeAnalysis(cmd.OutOrStdout(), result)
				return nil
			},
		}
	}

	var entityType string
	all := &cobra.Command{
		Use:   "all",
		Short: "Analiza todos los proveedores o técnicos presentes en los registros",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := incident.ParseEntityType(entityType)
			if !ok {
				return fmt.Errorf("tipo desconocido %q (vendor o technician)", entityType)
			}

			results := a.svc.AnalyzeAll(cmd.Context(), t)
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No records found.")
				return nil
			}
			for i, r := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				writeAnalysis(out, r)
			}
			return nil
		},
	}
	all.Flags().StringVar(&entityType, "type", "vendor", "vendor o technician")

	cmd.AddCommand(
		entity(incident.EntityVendor, "vendor", "Analiza un proveedor"),
		entity(incident.EntityTechnician, "technician", "Analiza un técnico (incluye lista negra)"),
		all,
	)
	return cmd
}
