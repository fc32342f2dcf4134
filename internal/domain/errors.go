package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// El detalle se agrega con fmt.Errorf("%w: ...", ErrX); los llamadores comparan con errors.Is.
var (
	ErrValidation   = errors.New("datos inválidos")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrStorage      = errors.New("falla del almacenamiento")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)
