package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/bloodbank-api/internal/domain"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/inventory"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
)

var _ repository.StockUnitRepository = (*StockUnitRepo)(nil)

const stockUnitColumns = `id, serial_id, category, blood_type, rh_factor, combined_type,
	volume_ml, collected_at, expires_at, status, created_at, modified_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// StockUnitRepo implementación de StockUnitRepository sobre SQLite (usable con db o tx).
type StockUnitRepo struct {
	q Querier
}

// NewStockUnitRepository construye el adaptador. Pasar *sql.DB o *sql.Tx.
func NewStockUnitRepository(q Querier) *StockUnitRepo {
	return &StockUnitRepo{q: q}
}

// Create inserta la unidad.
func (r *StockUnitRepo) Create(ctx context.Context, u *entity.StockUnit) error {
	query := `INSERT INTO stock_units (` + stockUnitColumns + `, serial_fold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		u.ID, u.SerialID, string(u.Category), u.BloodType, u.RhFactor, u.CombinedType,
		u.VolumeMl, formatDate(u.CollectedAt), formatDate(u.ExpiresAt), u.Status,
		formatTimestamp(u.CreatedAt), formatOptionalTimestamp(u.ModifiedAt),
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
		FROM stock_units WHERE category = ? AND id = ? AND status = 'Stored'`
	u, err := scanStockUnit(r.q.QueryRowContext(ctx, query, string(category), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get stock unit", err)
	}
	return u, nil
}

// Update persiste los campos editables de una unidad Stored.
func (r *StockUnitRepo) Update(ctx context.Context, u *entity.StockUnit) error {
	query := `UPDATE stock_units
		SET serial_id = ?, serial_fold = ?, blood_type = ?, rh_factor = ?, combined_type = ?,
			volume_ml = ?, collected_at = ?, expires_at = ?, modified_at = ?
		WHERE category = ? AND id = ? AND status = 'Stored'`
	res, err := r.q.ExecContext(ctx, query,
		u.SerialID, inventory.FoldSearch(u.SerialID), u.BloodType, u.RhFactor, u.CombinedType, u.VolumeMl,
		formatDate(u.CollectedAt), formatDate(u.ExpiresAt), formatOptionalTimestamp(u.ModifiedAt),
		string(u.Category), u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el serial %s ya está en inventario", domain.ErrConflict, u.SerialID)
		}
		return storageErr("update stock unit", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("update stock unit", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: unidad %s", domain.ErrNotFound, u.ID)
	}
	return nil
}

// DeleteStored elimina las filas Stored de la categoría con esos IDs.
func (r *StockUnitRepo) DeleteStored(ctx context.Context, category entity.Category, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `DELETE FROM stock_units
		WHERE category = ? AND status = 'Stored' AND id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(category))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr("delete stock units", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("delete stock units", err)
	}
	return n, nil
}

// ListStored lista la categoría, más recientes primero.
func (r *StockUnitRepo) ListStored(ctx context.Context, category entity.Category) ([]*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units WHERE category = ? AND status = 'Stored'
		ORDER BY created_at DESC, id`
	return r.queryUnits(ctx, "list stock units", query, string(category))
}

// GetStoredBySerial coincidencia exacta de serial.
func (r *StockUnitRepo) GetStoredBySerial(ctx context.Context, category entity.Category, serialID string) (*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units WHERE category = ? AND serial_id = ? AND status = 'Stored'
		ORDER BY created_at LIMIT 1`
	u, err := scanStockUnit(r.q.QueryRowContext(ctx, query, string(category), serialID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get stock unit by serial", err)
	}
	return u, nil
}

// FindStoredBySerialFragment subcadena sin distinguir mayúsculas, ordenado por serial (BINARY).
// fragment llega plegado y se compara contra serial_fold; LOWER de SQLite solo pliega ASCII.
func (r *StockUnitRepo) FindStoredBySerialFragment(ctx context.Context, category entity.Category, fragment string, limit int) ([]*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE category = ? AND status = 'Stored' AND serial_fold LIKE ? ESCAPE '\'
		ORDER BY serial_id
		LIMIT ?`
	return r.queryUnits(ctx, "find stock units by serial", query, string(category), likePattern(fragment), limit)
}

// SearchStored busca el término (ya normalizado) en serial, grupo, estado y Rh.
func (r *StockUnitRepo) SearchStored(ctx context.Context, category entity.Category, term string) ([]*entity.StockUnit, error) {
	if term == "" {
		return r.ListStored(ctx, category)
	}
	pattern := likePattern(term)
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE category = ? AND status = 'Stored'
			AND (serial_fold LIKE ? ESCAPE '\' OR LOWER(blood_type) LIKE ? ESCAPE '\'
				OR LOWER(status) LIKE ? ESCAPE '\' OR LOWER(rh_factor) LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id`
	return r.queryUnits(ctx, "search stock units", query, string(category), pattern, pattern, pattern, pattern)
}

// LockStoredBySerials selecciona las unidades a liberar. SQLite no tiene FOR UPDATE:
// la transacción BEGIN IMMEDIATE ya tiene el lock de escritura de toda la base.
func (r *StockUnitRepo) LockStoredBySerials(ctx context.Context, category entity.Category, serialIDs []string) ([]*entity.StockUnit, error) {
	if len(serialIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE category = ? AND status = 'Stored' AND serial_id IN (` + placeholders(len(serialIDs)) + `)
		ORDER BY serial_id`
	args := make([]any, 0, len(serialIDs)+1)
	args = append(args, string(category))
	for _, s := range serialIDs {
		args = append(args, s)
	}
	return r.queryUnits(ctx, "lock stock units", query, args...)
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
	_, err := r.q.ExecContext(ctx, `UPDATE stock_units SET combined_type = ? WHERE id = ?`, combinedType, id)
	if err != nil {
		return storageErr("set combined type", err)
	}
	return nil
}

func (r *StockUnitRepo) queryUnits(ctx context.Context, op, query string, args ...any) ([]*entity.StockUnit, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer func() { _ = rows.Close() }()

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

func scanStockUnit(row rowScanner) (*entity.StockUnit, error) {
	var (
		u                  entity.StockUnit
		category           string
		collected, expires string
		createdAt          string
		modifiedAt         sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.SerialID, &category, &u.BloodType, &u.RhFactor, &u.CombinedType,
		&u.VolumeMl, &collected, &expires, &u.Status, &createdAt, &modifiedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Category = entity.Category(category)
	if u.CollectedAt, err = parseDate(collected); err != nil {
		return nil, err
	}
	if u.ExpiresAt, err = parseDate(expires); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if modifiedAt.Valid {
		t, err := parseTimestamp(modifiedAt.String)
		if err != nil {
			return nil, err
		}
		u.ModifiedAt = &t
	}
	return &u, nil
}
