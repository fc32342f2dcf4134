package entity

import "time"

// ReleaseRecord copia inmutable de una StockUnit al momento de su liberación,
// enriquecida con los datos del receptor. Nunca se actualiza ni se elimina.
type ReleaseRecord struct {
	ID         string
	BatchID    string // agrupa los registros escritos por una misma liberación
	OriginalID string // ID de la StockUnit archivada

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
	ModifiedAt   *time.Time

	ReceivingFacility    string
	Address              string
	ContactNumber        string
	Classification       string
	AuthorizedRecipient  string
	RecipientDesignation string
	DateOfRelease        time.Time
	ConditionUponRelease string
	RequestReference     string
	ReleasedBy           string
	ReleasedAt           time.Time
}
