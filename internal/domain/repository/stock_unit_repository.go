package repository

import (
	"context"

	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
)

// StockUnitRepository define el puerto de persistencia del inventario activo (unidades Stored).
// Todas las consultas se limitan a una categoría; las implementaciones se usan con pool o con tx.
type StockUnitRepository interface {
	// Create inserta la unidad. ErrConflict si ya existe un serial activo en la categoría.
	Create(ctx context.Context, unit *entity.StockUnit) error
	// GetByID devuelve nil, nil si no existe una unidad Stored con ese ID en la categoría.
	GetByID(ctx context.Context, category entity.Category, id string) (*entity.StockUnit, error)
	// Update persiste los campos editables. ErrNotFound si la fila ya no está Stored.
	Update(ctx context.Context, unit *entity.StockUnit) error
	// DeleteStored elimina las filas Stored de la categoría cuyos IDs coinciden; devuelve cuántas borró.
	DeleteStored(ctx context.Context, category entity.Category, ids []string) (int64, error)
	// ListStored lista las unidades Stored, más recientes primero.
	ListStored(ctx context.Context, category entity.Category) ([]*entity.StockUnit, error)
	// GetStoredBySerial busca coincidencia exacta; nil, nil si no hay.
	GetStoredBySerial(ctx context.Context, category entity.Category, serialID string) (*entity.StockUnit, error)
	// FindStoredBySerialFragment busca por subcadena (sin mayúsculas), ordenado por serial.
	FindStoredBySerialFragment(ctx context.Context, category entity.Category, fragment string, limit int) ([]*entity.StockUnit, error)
	// SearchStored busca la subcadena en serial, grupo, estado y Rh; más recientes primero.
	SearchStored(ctx context.Context, category entity.Category, term string) ([]*entity.StockUnit, error)
	// LockStoredBySerials selecciona y bloquea (cuando el motor lo permite) las unidades a liberar.
	LockStoredBySerials(ctx context.Context, category entity.Category, serialIDs []string) ([]*entity.StockUnit, error)
	// ListAllStored lista el inventario activo de todas las categorías (mantenimiento).
	ListAllStored(ctx context.Context) ([]*entity.StockUnit, error)
	// SetCombinedType reescribe solo el campo derivado (mantenimiento).
	SetCombinedType(ctx context.Context, id, combinedType string) error
}
