package inventory

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jhoicas/bloodbank-api/internal/domain"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
)

// CategoryPolicy describe las reglas de una categoría de hemocomponente.
// Un solo motor de inventario se parametriza con esta política en lugar de repetir
// la lógica por categoría.
type CategoryPolicy struct {
	Category      entity.Category
	Code          string // RBC, PLT, PLS
	Slug          string // segmento de URL
	Label         string
	BloodTypes    []string
	RhFactors     []string
	DefaultStatus string
}

var allBloodTypes = []string{entity.BloodTypeA, entity.BloodTypeB, entity.BloodTypeAB, entity.BloodTypeO}
var allRhFactors = []string{entity.RhPositive, entity.RhNegative}

var policies = []CategoryPolicy{
	{
		Category:      entity.CategoryRedBloodCell,
		Code:          "RBC",
		Slug:          "red-blood-cell",
		Label:         "Red Blood Cell",
		BloodTypes:    allBloodTypes,
		RhFactors:     allRhFactors,
		DefaultStatus: entity.StatusStored,
	},
	{
		Category:      entity.CategoryPlatelet,
		Code:          "PLT",
		Slug:          "platelet",
		Label:         "Platelet",
		BloodTypes:    allBloodTypes,
		RhFactors:     allRhFactors,
		DefaultStatus: entity.StatusStored,
	},
	{
		Category:      entity.CategoryPlasma,
		Code:          "PLS",
		Slug:          "plasma",
		Label:         "Plasma",
		BloodTypes:    allBloodTypes,
		RhFactors:     allRhFactors,
		DefaultStatus: entity.StatusStored,
	},
}

// Categories devuelve las categorías soportadas en orden estable.
func Categories() []entity.Category {
	out := make([]entity.Category, 0, len(policies))
	for _, p := range policies {
		out = append(out, p.Category)
	}
	return out
}

// PolicyFor devuelve la política de la categoría o ErrValidation si no existe.
func PolicyFor(c entity.Category) (CategoryPolicy, error) {
	for _, p := range policies {
		if p.Category == c {
			return p, nil
		}
	}
	return CategoryPolicy{}, fmt.Errorf("%w: categoría desconocida %q", domain.ErrValidation, string(c))
}

// ParseCategory acepta la etiqueta, el slug o el código de la categoría (sin distinguir mayúsculas).
func ParseCategory(s string) (entity.Category, error) {
	s = strings.TrimSpace(s)
	for _, p := range policies {
		if strings.EqualFold(s, p.Label) || strings.EqualFold(s, p.Slug) || strings.EqualFold(s, p.Code) {
			return p.Category, nil
		}
	}
	return "", fmt.Errorf("%w: categoría desconocida %q", domain.ErrValidation, s)
}

// Allows indica si la combinación ABO/Rh está permitida en la categoría.
func (p CategoryPolicy) Allows(bloodType, rh string) bool {
	return slices.Contains(p.BloodTypes, bloodType) && slices.Contains(p.RhFactors, rh)
}
