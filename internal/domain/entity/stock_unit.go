package entity

import "time"

// Estados de una unidad. Released es terminal: la fila sale del inventario activo.
const (
	StatusStored   = "Stored"
	StatusReleased = "Released"
)

// Grupos ABO y factor Rh.
const (
	BloodTypeA  = "A"
	BloodTypeB  = "B"
	BloodTypeAB = "AB"
	BloodTypeO  = "O"

	RhPositive = "+"
	RhNegative = "-"
)

// StockUnit representa una unidad física de hemocomponente mientras está en inventario activo.
// CombinedType se deriva de BloodType + RhFactor y nunca se asigna a mano.
type StockUnit struct {
	ID           string
	SerialID     string
	Category     Category
	BloodType    string
	RhFactor     string
	CombinedType string
	VolumeMl     int
	CollectedAt  time.Time
	ExpiresAt    time.Time
	Status       string
	CreatedAt    time.Time
	ModifiedAt   *time.Time // nil hasta la primera actualización
}
