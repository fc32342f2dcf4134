package http

import (
	"context"
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/bloodbank-api/internal/application/dto"
	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
	"github.com/jhoicas/bloodbank-api/pkg/jwt"
)

// Pinger verifica el almacenamiento para /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC       *inventory.StockUseCase
	ReleaseUC     *inventory.ReleaseUseCase
	ReleaseSlipUC *inventory.ReleaseSlipUseCase
	JWTSecret     string
	ServiceName   string
	Store         Pinger          // nil = /health sin chequeo de almacenamiento
	Metrics       nethttp.Handler // nil = sin /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Store != nil {
			if err := deps.Store.Ping(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE", Message: "almacenamiento no disponible"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	readers := RequireRole(jwt.RoleAdmin, jwt.RoleStaff, jwt.RoleViewer)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleStaff)

	// Inventario (protegido)
	inv := app.Group("/api/inventory", AuthMiddleware(deps.JWTSecret))

	releaseHandler := NewReleaseHandler(deps.ReleaseUC, deps.ReleaseSlipUC)
	inv.Get("/releases/:batch", readers, releaseHandler.GetBatch)
	inv.Get("/releases/:batch/slip", readers, releaseHandler.DownloadSlip)

	stockHandler := NewStockHandler(deps.StockUC)
	units := inv.Group("/:category/units")
	units.Get("/search", readers, stockHandler.Search)
	units.Get("/serial/:serial", readers, stockHandler.FindBySerial)
	units.Get("/", readers, stockHandler.List)
	units.Post("/", writers, stockHandler.Create)
	units.Delete("/", writers, stockHandler.Delete)
	units.Put("/:id", writers, stockHandler.Update)

	releases := inv.Group("/:category/releases")
	releases.Get("/", readers, releaseHandler.ListReleased)
	releases.Post("/", writers, releaseHandler.Release)
}
