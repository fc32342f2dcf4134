package sqlite

import (
	"context"
	"database/sql"

	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
)

var _ repository.ReleaseRecordRepository = (*ReleaseRecordRepo)(nil)

const releaseRecordColumns = `id, batch_id, original_id, serial_id, category, blood_type, rh_factor,
	combined_type, volume_ml, collected_at, expires_at, status, created_at, modified_at,
	receiving_facility, address, contact_number, classification, authorized_recipient,
	recipient_designation, date_of_release, condition_upon_release, request_reference,
	released_by, released_at`

// ReleaseRecordRepo archivo de liberaciones sobre SQLite. Solo INSERT y SELECT.
type ReleaseRecordRepo struct {
	q Querier
}

// NewReleaseRecordRepository construye el adaptador. Pasar *sql.DB o *sql.Tx.
func NewReleaseRecordRepository(q Querier) *ReleaseRecordRepo {
	return &ReleaseRecordRepo{q: q}
}

// CreateBatch inserta los registros; debe llamarse dentro de la transacción de la liberación.
func (r *ReleaseRecordRepo) CreateBatch(ctx context.Context, records []*entity.ReleaseRecord) error {
	query := `INSERT INTO release_records (` + releaseRecordColumns + `)
		VALUES (` + placeholders(25) + `)`
	for _, rec := range records {
		_, err := r.q.ExecContext(ctx, query,
			rec.ID, rec.BatchID, rec.OriginalID, rec.SerialID, string(rec.Category),
			rec.BloodType, rec.RhFactor, rec.CombinedType, rec.VolumeMl,
			formatDate(rec.CollectedAt), formatDate(rec.ExpiresAt), rec.Status,
			formatTimestamp(rec.CreatedAt), formatOptionalTimestamp(rec.ModifiedAt),
			rec.ReceivingFacility, rec.Address, rec.ContactNumber, rec.Classification,
			rec.AuthorizedRecipient, rec.RecipientDesignation, formatTimestamp(rec.DateOfRelease),
			rec.ConditionUponRelease, rec.RequestReference, rec.ReleasedBy, formatTimestamp(rec.ReleasedAt),
		)
		if err != nil {
			return storageErr("insert release record", err)
		}
	}
	return nil
}

// ListByCategory devuelve el archivo de la categoría, liberaciones más recientes primero.
func (r *ReleaseRecordRepo) ListByCategory(ctx context.Context, category entity.Category) ([]*entity.ReleaseRecord, error) {
	query := `SELECT ` + releaseRecordColumns + `
		FROM release_records WHERE category = ?
		ORDER BY released_at DESC, serial_id`
	return r.queryRecords(ctx, "list release records", query, string(category))
}

// ListByBatch devuelve los registros de un lote ordenados por serial.
func (r *ReleaseRecordRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.ReleaseRecord, error) {
	query := `SELECT ` + releaseRecordColumns + `
		FROM release_records WHERE batch_id = ?
		ORDER BY serial_id`
	return r.queryRecords(ctx, "list release batch", query, batchID)
}

func (r *ReleaseRecordRepo) queryRecords(ctx context.Context, op, query string, args ...any) ([]*entity.ReleaseRecord, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer func() { _ = rows.Close() }()

	var list []*entity.ReleaseRecord
	for rows.Next() {
		rec, err := scanReleaseRecord(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		list = append(list, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return list, nil
}

func scanReleaseRecord(row rowScanner) (*entity.ReleaseRecord, error) {
	var (
		rec                     entity.ReleaseRecord
		category                string
		collected, expires      string
		createdAt               string
		modifiedAt              sql.NullString
		dateOfRelease, released string
	)
	err := row.Scan(
		&rec.ID, &rec.BatchID, &rec.OriginalID, &rec.SerialID, &category,
		&rec.BloodType, &rec.RhFactor, &rec.CombinedType, &rec.VolumeMl,
		&collected, &expires, &rec.Status, &createdAt, &modifiedAt,
		&rec.ReceivingFacility, &rec.Address, &rec.ContactNumber, &rec.Classification,
		&rec.AuthorizedRecipient, &rec.RecipientDesignation, &dateOfRelease,
		&rec.ConditionUponRelease, &rec.RequestReference, &rec.ReleasedBy, &released,
	)
	if err != nil {
		return nil, err
	}
	rec.Category = entity.Category(category)
	if rec.CollectedAt, err = parseDate(collected); err != nil {
		return nil, err
	}
	if rec.ExpiresAt, err = parseDate(expires); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if modifiedAt.Valid {
		t, err := parseTimestamp(modifiedAt.String)
		if err != nil {
			return nil, err
		}
		rec.ModifiedAt = &t
	}
	if rec.DateOfRelease, err = parseTimestamp(dateOfRelease); err != nil {
		return nil, err
	}
	if rec.ReleasedAt, err = parseTimestamp(released); err != nil {
		return nil, err
	}
	return &rec, nil
}
