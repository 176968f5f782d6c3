// Package cli expone la aplicación como comandos cobra.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/config"
	"github.com/PhelGc/fieldops/internal/discord"
	"github.com/PhelGc/fieldops/internal/evaluator"
	"github.com/PhelGc/fieldops/internal/review"
)

// Env dependencias del proceso. Los campos nil se construyen desde la configuración.
type Env struct {
	Config      *config.Config
	Logger      *zap.Logger
	Now         func() time.Time
	Generator   evaluator.Generator
	Notifier    discord.Notifier
	IssueSource review.IssueSource
}

// Execute punto de entrada del binario; devuelve el código de salida
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, &Env{}, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorMessage(err))
		return 1
	}
	return 0
}

// Run ejecuta un comando completo y libera los recursos abiertos al terminar
func Run(ctx context.Context, env *Env, args []string, in io.Reader, out io.Writer) error {
	a := &app{env: env}
	defer a.stop()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "fieldops",
		Short: "FieldOps - revisión de incidencias de servicio en campo",
		Long: `Registra revisiones de calidad de servicios en campo, importa lotes
pegados columna por columna y genera análisis de desempeño por técnico
o proveedor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.start(cmd.Context(), logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "nivel de log: debug, info, warn o error (por defecto LOG_LEVEL)")

	root.AddCommand(
		newImportCmd(a),
		newIncidentCmd(a),
		newStatsCmd(a),
		newAnalyzeCmd(a),
		newAdminCmd(a),
		newJiraCmd(a),
	)
	return root
}
