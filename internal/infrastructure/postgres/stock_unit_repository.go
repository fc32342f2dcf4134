package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bloodbank-api/internal/domain"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/inventory"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
)

var _ repository.StockUnitRepository = (*StockUnitRepo)(nil)

const stockUnitColumns = `id, serial_id, category, blood_type, rh_factor, combined_type,
	volume_ml, collected_at, expires_at, status, created_at, modified_at`

// StockUnitRepo implementación de StockUnitRepository sobre PostgreSQL (usable con pool o tx).
type StockUnitRepo struct {
	q Querier
}

// NewStockUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockUnitRepository(q Querier) *StockUnitRepo {
	return &StockUnitRepo{q: q}
}

// Create inserta la unidad.
func (r *StockUnitRepo) Create(ctx context.Context, u *entity.StockUnit) error {
	query := `
		INSERT INTO stock_units (` + stockUnitColumns + `, serial_fold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.SerialID, string(u.Category), u.BloodType, u.RhFactor, u.CombinedType,
		u.VolumeMl, u.CollectedAt, u.ExpiresAt, u.Status, u.CreatedAt, u.ModifiedAt,
		inventory.FoldSearch(u.SerialID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el serial %s ya está en inventario", domain.ErrConflict, u.SerialID)
		}
		return storageErr("insert stock unit", err)
	}
	return nil
}

// GetByID devuelve nil, nil si no hay unidad Stored con ese ID en la categoría.
func (r *StockUnitRepo) GetByID(ctx context.Context, category entity.Category, id string) (*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units WHERE category = $1 AND id = $2 AND status = $3`
	u, err := scanStockUnit(r.q.QueryRow(ctx, query, string(category), id, entity.StatusStored))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get stock unit", err)
	}
	return u, nil
}

// Update persiste los campos editables de una unidad Stored.
func (r *StockUnitRepo) Update(ctx context.Context, u *entity.StockUnit) error {
	query := `
		UPDATE stock_units
		SET serial_id = $3, blood_type = $4, rh_factor = $5, combined_type = $6,
			volume_ml = $7, collected_at = $8, expires_at = $9, modified_at = $10, serial_fold = $11
		WHERE category = $1 AND id = $2 AND status = 'Stored'`
	tag, err := r.q.Exec(ctx, query,
		string(u.Category), u.ID, u.SerialID, u.BloodType, u.RhFactor, u.CombinedType,
		u.VolumeMl, u.CollectedAt, u.ExpiresAt, u.ModifiedAt, inventory.FoldSearch(u.SerialID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el serial %s ya está en inventario", domain.ErrConflict, u.SerialID)
		}
		return storageErr("update stock unit", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: unidad %s", domain.ErrNotFound, u.ID)
	}
	return nil
}

// DeleteStored elimina las filas Stored de la categoría con esos IDs.
func (r *StockUnitRepo) DeleteStored(ctx context.Context, category entity.Category, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `DELETE FROM stock_units WHERE category = $1 AND status = 'Stored' AND id = ANY($2)`
	tag, err := r.q.Exec(ctx, query, string(category), ids)
	if err != nil {
		return 0, storageErr("delete stock units", err)
	}
	return tag.RowsAffected(), nil
}

// ListStored lista la categoría, más recientes primero.
func (r *StockUnitRepo) ListStored(ctx context.Context, category entity.Category) ([]*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units WHERE category = $1 AND status = 'Stored'
		ORDER BY created_at DESC, id`
	return r.queryUnits(ctx, "list stock units", query, string(category))
}

// GetStoredBySerial coincidencia exacta de serial.
func (r *StockUnitRepo) GetStoredBySerial(ctx context.Context, category entity.Category, serialID string) (*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units WHERE category = $1 AND serial_id = $2 AND status = 'Stored'
		ORDER BY created_at LIMIT 1`
	u, err := scanStockUnit(r.q.QueryRow(ctx, query, string(category), serialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get stock unit by serial", err)
	}
	return u, nil
}

// FindStoredBySerialFragment subcadena sin distinguir mayúsculas sobre serial_fold, ordenado por serial (orden de bytes).
func (r *StockUnitRepo) FindStoredBySerialFragment(ctx context.Context, category entity.Category, fragment string, limit int) ([]*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE category = $1 AND status = 'Stored' AND serial_fold LIKE $2
		ORDER BY serial_id COLLATE "C"
		LIMIT $3`
	return r.queryUnits(ctx, "find stock units by serial", query, string(category), likePattern(fragment), limit)
}

// SearchStored busca el término (ya normalizado) en serial, grupo, estado y Rh.
func (r *StockUnitRepo) SearchStored(ctx context.Context, category entity.Category, term string) ([]*entity.StockUnit, error) {
	if term == "" {
		return r.ListStored(ctx, category)
	}
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE category = $1 AND status = 'Stored'
			AND (serial_fold LIKE $2 OR LOWER(blood_type) LIKE $2
				OR LOWER(status) LIKE $2 OR LOWER(rh_factor) LIKE $2)
		ORDER BY created_at DESC, id`
	return r.queryUnits(ctx, "search stock units", query, string(category), likePattern(term))
}

// LockStoredBySerials selecciona las unidades a liberar con SELECT ... FOR UPDATE.
// Una liberación concurrente del mismo serial espera el commit y luego ya no ve la fila.
func (r *StockUnitRepo) LockStoredBySerials(ctx context.Context, category entity.Category, serialIDs []string) ([]*entity.StockUnit, error) {
	if len(serialIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE category = $1 AND status = 'Stored' AND serial_id = ANY($2)
		ORDER BY serial_id
		FOR UPDATE`
	return r.queryUnits(ctx, "lock stock units", query, string(category), serialIDs)
}

// ListAllStored lista todas las categorías (mantenimiento).
func (r *StockUnitRepo) ListAllStored(ctx context.Context) ([]*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units WHERE status = 'Stored'
		ORDER BY category, created_at`
	return r.queryUnits(ctx, "list all stock units", query)
}

// SetCombinedType reescribe solo el campo derivado.
func (r *StockUnitRepo) SetCombinedType(ctx context.Context, id, combinedType string) error {
	_, err := r.q.Exec(ctx, `UPDATE stock_units SET combined_type = $2 WHERE id = $1`, id, combinedType)
	if err != nil {
		return storageErr("set combined type", err)
	}
	return nil
}

func (r *StockUnitRepo) queryUnits(ctx context.Context, op, query string, args ...any) ([]*entity.StockUnit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var list []*entity.StockUnit
	for rows.Next() {
		u, err := scanStockUnit(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return list, nil
}

func scanStockUnit(row pgx.Row) (*entity.StockUnit, error) {
	var (
		u          entity.StockUnit
		category   string
		modifiedAt *time.Time
	)
	err := row.Scan(
		&u.ID, &u.SerialID, &category, &u.BloodType, &u.RhFactor, &u.CombinedType,
		&u.VolumeMl, &u.CollectedAt, &u.ExpiresAt, &u.Status, &u.CreatedAt, &modifiedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Category = entity.Category(category)
	u.ModifiedAt = modifiedAt
	return &u, nil
}
