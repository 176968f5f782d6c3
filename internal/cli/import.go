package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/PhelGc/fieldops/internal/importer"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Constructor de importación por columnas",
		Long: `Cada columna se pega por separado (un valor por línea) y se guarda como
borrador. Al confirmar, las columnas se alinean por fila: la columna más
larga define la cantidad de registros y las celdas faltantes toman valores
por defecto.

Columnas: incidentNumber, date, vendorName, technicianName, overallScore,
punctualityScore, deliverablesScore, isAbandoned, feedback`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <column> [file|-]",
			Short: "Reemplaza una columna con el texto de un archivo o de stdin",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := importer.ParseColumnKey(args[0])
				if err != nil {
					return err
				}

				var text []byte
				if len(args) == 1 || args[1] == "-" {
					text, err = io.ReadAll(cmd.InOrStdin())
				} else {
					text, err = os.ReadFile(args[1])
				}
				if err != nil {
					return fmt.Errorf("error leyendo columna: %w", err)
				}

				values, err := a.svc.SetColumn(cmd.Context(), key, string(text))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d values\n", key.Label(), len(values))
				return nil
			},
		},
		&cobra.Command{
			Use:   "show [column]",
			Short: "Muestra el borrador (conteo por columna, o los valores de una columna)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				draft := a.svc.Draft()
				out := cmd.OutOrStdout()

				if len(args) == 1 {
					key, err := importer.ParseColumnKey(args[0])
					if err != nil {
						return err
					}
					if text := draft.Text(key); text != "" {
						fmt.Fprintln(out, text)
					}
					return nil
				}

				counts := draft.Counts()
				tw := newTable(out)
				fmt.Fprintln(tw, "COLUMN\tLABEL\tVALUES")
				for _, spec := range importer.Specs {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", spec.Key, spec.Label, counts[spec.Key])
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Rows: %d\n", draft.MaxRows())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear [column]",
			Short: "Vacía una columna o todo el borrador",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					if err := a.svc.ClearColumns(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Column builder cleared.")
					return nil
				}

				key, err := importer.ParseColumnKey(args[0])
				if err != nil {
					return err
				}
				if err := a.svc.ClearColumn(cmd.Context(), key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s cleared.\n", key.Label())
				return nil
			},
		},
		&cobra.Command{
			Use:   "preview",
			Short: "Muestra los registros que se importarían (primeras 100 filas)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				preview := a.svc.Preview()
				out := cmd.OutOrStdout()
				if preview.Total == 0 {
					fmt.Fprintln(out, "No rows to import.")
					return nil
				}
				if err := writeIncidents(out, preview.Rows); err != nil {
					return err
				}
				if preview.Truncated() {
					fmt.Fprintf(out, "Showing %d of %d rows.\n", len(preview.Rows), preview.Total)
				} else {
					fmt.Fprintf(out, "%d rows.\n", preview.Total)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "commit",
			Short: "Importa el borrador como un solo lote y lo vacía",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := a.svc.CommitImport(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d records imported successfully.\n", n)
				return nil
			},
		},
	)
	return cmd
}
