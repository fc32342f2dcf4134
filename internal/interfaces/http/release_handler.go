package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bloodbank-api/internal/application/dto"
	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
)

// ReleaseHandler liberaciones y archivo (protegido).
type ReleaseHandler struct {
	uc    *inventory.ReleaseUseCase
	slips *inventory.ReleaseSlipUseCase
}

// NewReleaseHandler construye el handler. slips puede ser nil (sin comprobante PDF).
func NewReleaseHandler(uc *inventory.ReleaseUseCase, slips *inventory.ReleaseSlipUseCase) *ReleaseHandler {
	return &ReleaseHandler{uc: uc, slips: slips}
}

// Release godoc
// @Summary      Liberar unidades
// @Description  Mueve las unidades Stored con esos seriales al archivo en una sola transacción.
// @Tags         releases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        category  path  string              true  "red-blood-cell | platelet | plasma"
// @Param        body      body  dto.ReleaseRequest  true  "serial_ids y datos del destino"
// @Success      201  {object}  dto.ReleaseResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/{category}/releases [post]
func (h *ReleaseHandler) Release(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ReleaseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.ReleaseFromRequest(c.Context(), category, GetUsername(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListReleased archivo de la categoría.
// GET /api/inventory/:category/releases
func (h *ReleaseHandler) ListReleased(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListReleasedFromRequest(c.Context(), category)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetBatch registros de un lote.
// GET /api/inventory/releases/:batch
func (h *ReleaseHandler) GetBatch(c *fiber.Ctx) error {
	out, err := h.uc.GetBatchFromRequest(c.Context(), c.Params("batch"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DownloadSlip comprobante PDF del lote.
// GET /api/inventory/releases/:batch/slip
func (h *ReleaseHandler) DownloadSlip(c *fiber.Ctx) error {
	if h.slips == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "comprobante no disponible"})
	}
	pdf, filename, err := h.slips.DownloadReleaseSlip(c.Context(), c.Params("batch"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}
