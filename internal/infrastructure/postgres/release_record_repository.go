package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
)

var _ repository.ReleaseRecordRepository = (*ReleaseRecordRepo)(nil)

const releaseRecordColumns = `id, batch_id, original_id, serial_id, category, blood_type, rh_factor,
	combined_type, volume_ml, collected_at, expires_at, status, created_at, modified_at,
	receiving_facility, address, contact_number, classification, authorized_recipient,
	recipient_designation, date_of_release, condition_upon_release, request_reference,
	released_by, released_at`

// ReleaseRecordRepo archivo de liberaciones sobre PostgreSQL. Solo INSERT y SELECT.
type ReleaseRecordRepo struct {
	q Querier
}

// NewReleaseRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReleaseRecordRepository(q Querier) *ReleaseRecordRepo {
	return &ReleaseRecordRepo{q: q}
}

// CreateBatch inserta los registros; debe llamarse dentro de la transacción de la liberación.
func (r *ReleaseRecordRepo) CreateBatch(ctx context.Context, records []*entity.ReleaseRecord) error {
	query := `
		INSERT INTO release_records (` + releaseRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	for _, rec := range records {
		_, err := r.q.Exec(ctx, query,
			rec.ID, rec.BatchID, rec.OriginalID, rec.SerialID, string(rec.Category),
			rec.BloodType, rec.RhFactor, rec.CombinedType, rec.VolumeMl,
			rec.CollectedAt, rec.ExpiresAt, rec.Status, rec.CreatedAt, rec.ModifiedAt,
			rec.ReceivingFacility, rec.Address, rec.ContactNumber, rec.Classification,
			rec.AuthorizedRecipient, rec.RecipientDesignation, rec.DateOfRelease,
			rec.ConditionUponRelease, rec.RequestReference, rec.ReleasedBy, rec.ReleasedAt,
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
		FROM release_records WHERE category = $1
		ORDER BY released_at DESC, serial_id`
	return r.queryRecords(ctx, "list release records", query, string(category))
}

// ListByBatch devuelve los registros de un lote ordenados por serial.
func (r *ReleaseRecordRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.ReleaseRecord, error) {
	query := `SELECT ` + releaseRecordColumns + `
		FROM release_records WHERE batch_id = $1
		ORDER BY serial_id`
	return r.queryRecords(ctx, "list release batch", query, batchID)
}

func (r *ReleaseRecordRepo) queryRecords(ctx context.Context, op, query string, args ...any) ([]*entity.ReleaseRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

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

func scanReleaseRecord(row pgx.Row) (*entity.ReleaseRecord, error) {
	var (
		rec        entity.ReleaseRecord
		category   string
		modifiedAt *time.Time
	)
	err := row.Scan(
		&rec.ID, &rec.BatchID, &rec.OriginalID, &rec.SerialID, &category,
		&rec.BloodType, &rec.RhFactor, &rec.CombinedType, &rec.VolumeMl,
		&rec.CollectedAt, &rec.ExpiresAt, &rec.Status, &rec.CreatedAt, &modifiedAt,
		&rec.ReceivingFacility, &rec.Address, &rec.ContactNumber, &rec.Classification,
		&rec.AuthorizedRecipient, &rec.RecipientDesignation, &rec.DateOfRelease,
		&rec.ConditionUponRelease, &rec.RequestReference, &rec.ReleasedBy, &rec.ReleasedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Category = entity.Category(category)
	rec.ModifiedAt = modifiedAt
	return &rec, nil
}
