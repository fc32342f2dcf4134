package inventory

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/bloodbank-api/internal/domain"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
)

// Combine deriva el tipo combinado que se muestra al operador (ej. "A+", "O-").
// Se aplica en cada alta y actualización para que el campo derivado no se desvíe.
func Combine(bloodType, rh string) string {
	return bloodType + rh
}

// normalize recorta y pasa a mayúsculas. cases.Caser no se comparte entre goroutines.
func normalize(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// ParseBloodType normaliza la entrada del operador ("ab", " O ") a un grupo ABO.
func ParseBloodType(s string) (string, error) {
	v := normalize(s)
	switch v {
	case entity.BloodTypeA, entity.BloodTypeB, entity.BloodTypeAB, entity.BloodTypeO:
		return v, nil
	case "":
		return "", fmt.Errorf("%w: type es requerido", domain.ErrValidation)
	}
	return "", fmt.Errorf("%w: grupo sanguíneo inválido %q", domain.ErrValidation, s)
}

// ParseRhFactor normaliza "+", "pos", "positive", "-", "neg", "negative".
func ParseRhFactor(s string) (string, error) {
	v := normalize(s)
	switch v {
	case "+", "POS", "POSITIVE", "POSITIVO":
		return entity.RhPositive, nil
	case "-", "NEG", "NEGATIVE", "NEGATIVO":
		return entity.RhNegative, nil
	case "":
		return "", fmt.Errorf("%w: rhFactor es requerido", domain.ErrValidation)
	}
	return "", fmt.Errorf("%w: factor Rh inválido %q", domain.ErrValidation, s)
}
