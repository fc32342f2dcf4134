package dto

// Formatos de fecha de la frontera: fechas de calendario y marcas de tiempo fecha+hora.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// CreateStockUnitRequest body para POST /api/inventory/:category/units.
type CreateStockUnitRequest struct {
	SerialID   string `json:"serial_id"`
	Type       string `json:"type"`
	RhFactor   string `json:"rhFactor"`
	Volume     int    `json:"volume"`
	Collection string `json:"collection"` // YYYY-MM-DD
	Expiration string `json:"expiration"` // YYYY-MM-DD
}

// UpdateStockUnitRequest body para PUT /api/inventory/:category/units/:id (campos omitidos no cambian).
type UpdateStockUnitRequest struct {
	SerialID   *string `json:"serial_id"`
	Type       *string `json:"type"`
	RhFactor   *string `json:"rhFactor"`
	Volume     *int    `json:"volume"`
	Collection *string `json:"collection"`
	Expiration *string `json:"expiration"`
}

// DeleteStockUnitsRequest body para DELETE /api/inventory/:category/units.
type DeleteStockUnitsRequest struct {
	IDs []string `json:"ids"`
}

// StockUnitResponse salida de una unidad del inventario activo.
type StockUnitResponse struct {
	ID           string  `json:"id"`
	SerialID     string  `json:"serial_id"`
	Category     string  `json:"category"`
	Type         string  `json:"type"`
	RhFactor     string  `json:"rhFactor"`
	CombinedType string  `json:"combined_type"`
	Volume       int     `json:"volume"`
	Collection   string  `json:"collection"`
	Expiration   string  `json:"expiration"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	ModifiedAt   *string `json:"modified_at"`
}

// StockUnitListResponse lista de unidades.
type StockUnitListResponse struct {
	Items []StockUnitResponse `json:"items"`
	Total int                 `json:"total"`
}

// SerialLookupResponse resultado de findBySerial: match exacto o candidatos aproximados.
type SerialLookupResponse struct {
	Match      *StockUnitResponse  `json:"match,omitempty"`
	Candidates []StockUnitResponse `json:"candidates,omitempty"`
}

// ReleaseRequest body para POST /api/inventory/:category/releases.
type ReleaseRequest struct {
	SerialIDs            []string `json:"serial_ids"`
	ReceivingFacility    string   `json:"receiving_facility"`
	Address              string   `json:"address"`
	ContactNumber        string   `json:"contact_number"`
	Classification       string   `json:"classification"`
	AuthorizedRecipient  string   `json:"authorized_recipient"`
	RecipientDesignation string   `json:"recipient_designation"`
	DateOfRelease        string   `json:"date_of_release"` // vacío = hora del servidor
	ConditionUponRelease string   `json:"condition_upon_release"`
	RequestReference     string   `json:"request_reference"`
}

// ReleaseResponse resultado de una liberación.
type ReleaseResponse struct {
	BatchID       string   `json:"batch_id"`
	ReleasedCount int      `json:"released_count"`
	Unmatched     []string `json:"unmatched"`
}

// ReleaseRecordResponse salida de un registro del archivo de liberaciones.
type ReleaseRecordResponse struct {
	ID                   string  `json:"id"`
	BatchID              string  `json:"batch_id"`
	OriginalID           string  `json:"original_id"`
	SerialID             string  `json:"serial_id"`
	Category             string  `json:"category"`
	Type                 string  `json:"type"`
	RhFactor             string  `json:"rhFactor"`
	CombinedType         string  `json:"combined_type"`
	Volume               int     `json:"volume"`
	Collection           string  `json:"collection"`
	Expiration           string  `json:"expiration"`
	Status               string  `json:"status"`
	CreatedAt            string  `json:"created_at"`
	ModifiedAt           *string `json:"modified_at"`
	ReceivingFacility    string  `json:"receiving_facility"`
	Address              string  `json:"address"`
	ContactNumber        string  `json:"contact_number"`
	Classification       string  `json:"classification"`
	AuthorizedRecipient  string  `json:"authorized_recipient"`
	RecipientDesignation string  `json:"recipient_designation"`
	DateOfRelease        string  `json:"date_of_release"`
	ConditionUponRelease string  `json:"condition_upon_release"`
	RequestReference     string  `json:"request_reference"`
	ReleasedBy           string  `json:"released_by"`
	ReleasedAt           string  `json:"released_at"`
}

// ReleaseRecordListResponse lista del archivo.
type ReleaseRecordListResponse struct {
	Items []ReleaseRecordResponse `json:"items"`
	Total int                     `json:"total"`
}
