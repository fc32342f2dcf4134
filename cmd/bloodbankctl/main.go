// bloodbankctl tareas de mantenimiento del inventario fuera del servidor HTTP.
//
// Uso:
//
//	bloodbankctl migrate
//	bloodbankctl repair-types
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
	"github.com/jhoicas/bloodbank-api/internal/infrastructure/datastore"
	"github.com/jhoicas/bloodbank-api/pkg/config"
	"github.com/jhoicas/bloodbank-api/pkg/logger"
)

type app struct {
	cfg *config.Config
	log *logger.Logger
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run devuelve el código de salida; los defer se ejecutan antes de os.Exit.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := &cobra.Command{
		Use:               "bloodbankctl",
		Short:             "Mantenimiento del inventario del banco de sangre",
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}
	root.AddCommand(a.migrateCmd(), a.repairTypesCmd())
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func (a *app) init(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "bloodbankctl"})
	return nil
}

// withStore abre el almacenamiento configurado y lo cierra al terminar fn.
func (a *app) withStore(ctx context.Context, fn func(*datastore.Store) error) error {
	store, err := datastore.Open(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Crea tablas e índices del inventario y del archivo de liberaciones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(store *datastore.Store) error {
				if err := store.Migrate(cmd.Context()); err != nil {
					return err
				}
				a.log.Info().Str("driver", store.Driver).Msg("migraciones aplicadas")
				return nil
			})
		},
	}
}

func (a *app) repairTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair-types",
		Short: "Recalcula el tipo combinado de todas las unidades en stock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(store *datastore.Store) error {
				uc := inventory.NewMaintenanceUseCase(store.TxRunner, a.log.Zerolog())
				report, err := uc.RepairCombinedTypes(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revisadas: %d, reparadas: %d\n", report.Scanned, report.Repaired)
				return nil
			})
		},
	}
}
