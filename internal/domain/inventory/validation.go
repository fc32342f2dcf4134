package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/bloodbank-api/internal/domain"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
)

// ValidateUnit aplica las restricciones comunes de alta y actualización:
// campos requeridos, volumen positivo, vencimiento posterior a la recolección y
// combinación ABO/Rh permitida por la política de la categoría.
func ValidateUnit(p CategoryPolicy, u *entity.StockUnit) error {
	if u == nil {
		return fmt.Errorf("%w: unidad vacía", domain.ErrValidation)
	}
	if u.Category != p.Category {
		return fmt.Errorf("%w: la unidad no pertenece a %s", domain.ErrValidation, p.Label)
	}
	if strings.TrimSpace(u.SerialID) == "" {
		return fmt.Errorf("%w: serial_id es requerido", domain.ErrValidation)
	}
	if u.BloodType == "" || u.RhFactor == "" {
		return fmt.Errorf("%w: type y rhFactor son requeridos", domain.ErrValidation)
	}
	if !p.Allows(u.BloodType, u.RhFactor) {
		return fmt.Errorf("%w: %s no admite %s", domain.ErrValidation, p.Label, Combine(u.BloodType, u.RhFactor))
	}
	if u.VolumeMl <= 0 {
		return fmt.Errorf("%w: volume debe ser mayor que cero", domain.ErrValidation)
	}
	if u.CollectedAt.IsZero() || u.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: collection y expiration son requeridos", domain.ErrValidation)
	}
	if !u.ExpiresAt.After(u.CollectedAt) {
		return fmt.Errorf("%w: expiration debe ser posterior a collection", domain.ErrValidation)
	}
	return nil
}
