package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bloodbank-api/internal/application/dto"
	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	domaininv "github.com/jhoicas/bloodbank-api/internal/domain/inventory"
)

// StockHandler maneja el inventario activo de una categoría (protegido).
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// categoryParam resuelve :category (etiqueta, slug o código).
func categoryParam(c *fiber.Ctx) (entity.Category, error) {
	return domaininv.ParseCategory(c.Params("category"))
}

// Create godoc
// @Summary      Registrar unidad
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        category  path  string                      true  "red-blood-cell | platelet | plasma"
// @Param        body      body  dto.CreateStockUnitRequest  true  "serial_id, type, rhFactor, volume, collection, expiration"
// @Success      201  {object}  dto.StockUnitResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/{category}/units [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CreateStockUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.AddFromRequest(c.Context(), category, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar inventario activo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        category  path   string  true   "red-blood-cell | platelet | plasma"
// @Param        status    query  string  false  "Stored (por defecto)"
// @Success      200  {object}  dto.StockUnitListResponse
// @Router       /api/inventory/{category}/units [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListFromRequest(c.Context(), category, c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update edita una unidad Stored; campos omitidos no cambian.
// PUT /api/inventory/:category/units/:id
func (h *StockHandler) Update(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateStockUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateFromRequest(c.Context(), category, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete descarta unidades Stored por ID. IDs inexistentes se ignoran.
// DELETE /api/inventory/:category/units
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.DeleteStockUnitsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	n, err := h.uc.Delete(c.Context(), category, in.IDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DeleteResponse{Deleted: n})
}

// Search busca en serial, grupo, estado y Rh.
// GET /api/inventory/:category/units/search?q=
func (h *StockHandler) Search(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SearchFromRequest(c.Context(), category, c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// FindBySerial coincidencia exacta o hasta cinco candidatos.
// GET /api/inventory/:category/units/serial/:serial
func (h *StockHandler) FindBySerial(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.FindBySerialFromRequest(c.Context(), category, c.Params("serial"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
