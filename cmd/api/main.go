package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
	"github.com/jhoicas/bloodbank-api/internal/infrastructure/datastore"
	infrapdf "github.com/jhoicas/bloodbank-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/bloodbank-api/internal/interfaces/http"
	"github.com/jhoicas/bloodbank-api/pkg/config"
	"github.com/jhoicas/bloodbank-api/pkg/logger"
	"github.com/jhoicas/bloodbank-api/pkg/metrics"
)

func main() {
	os.Exit(run())
}

// run arranca el servidor y devuelve el código de salida. Los errores de arranque
// retornan en lugar de terminar el proceso para que el almacenamiento se cierre.
func run() int {
	_ = godotenv.Load() // .env opcional; las variables del entorno tienen prioridad

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		return 1
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := datastore.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("conexión al almacenamiento")
		return 1
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		log.Error().Err(err).Msg("migraciones")
		return 1
	}

	var recorder *metrics.Recorder
	var metricsRecorder inventory.MetricsRecorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder("bloodbank")
		metricsRecorder = recorder
	}

	zl := log.Zerolog()
	stockUC := inventory.NewStockUseCase(store.Stock, store.TxRunner, metricsRecorder, zl)
	releaseUC := inventory.NewReleaseUseCase(store.TxRunner, store.Releases, metricsRecorder, zl)

	// PDF: comprobante de entrega del lote liberado
	slipGenerator := infrapdf.NewMarotoReleaseSlipGenerator(cfg.App.Name)
	releaseSlipUC := inventory.NewReleaseSlipUseCase(releaseUC, slipGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Blood Bank Inventory API",
	}))

	deps := httpRouter.RouterDeps{
		StockUC:       stockUC,
		ReleaseUC:     releaseUC,
		ReleaseSlipUC: releaseSlipUC,
		JWTSecret:     cfg.JWT.Secret,
		ServiceName:   cfg.App.Name,
		Store:         store,
	}
	if recorder != nil {
		deps.Metrics = recorder.Handler()
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
	return 0
}
