package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/jira"
	"github.com/PhelGc/fieldops/internal/review"
)

func newJiraCmd(a *app) *cobra.Command {
	var watch bool

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Importa tickets de Jira como incidencias",
		Long: `Trae los tickets del proyecto configurado (JIRA_*), omite los que ya
existen por número de incidencia e importa el resto. Con --watch repite
cada SYNC_INTERVAL_MINUTES minutos hasta recibir una señal de salida.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := a.env.IssueSource
			if source == nil {
				client, err := jira.NewClient(a.cfg.Jira)
				if err != nil {
					return err
				}
				source = client
			}

			out := cmd.OutOrStdout()
			if !watch {
				return syncOnce(cmd.Context(), a.svc, source, out)
			}
			return a.watchJira(cmd.Context(), source, out)
		},
	}
	syncCmd.Flags().BoolVar(&watch, "watch", false, "sincronizar periódicamente")

	cmd := &cobra.Command{Use: "jira", Short: "Integración con Jira"}
	cmd.AddCommand(syncCmd)
	return cmd
}

func syncOnce(ctx context.Context, svc *review.Service, source review.IssueSource, out io.Writer) error {
	res, err := svc.SyncJira(ctx, source)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sync complete: %d fetched, %d imported, %d skipped.\n", res.Fetched, res.Imported, res.Skipped)
	return nil
}

// watchJira sincroniza al iniciar y luego en cada tick; los errores de una
// pasada se registran y el ciclo sigue
func (a *app) watchJira(ctx context.Context, source review.IssueSource, out io.Writer) error {
	interval := time.Duration(a.cfg.Sync.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info("Sincronización configurada", zap.Duration("interval", interval))

	for {
		if err := syncOnce(ctx, a.svc, source, out); err != nil {
			a.logger.Error("Error en sincronización", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			a.logger.Info("Sincronización detenida")
			return nil
		case <-ticker.C:
		}
	}
}
