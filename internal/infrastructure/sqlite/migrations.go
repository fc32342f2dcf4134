package sqlite

import (
	"context"

	"github.com/jhoicas/bloodbank-api/internal/domain/inventory"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS stock_units (
		id            TEXT PRIMARY KEY,
		serial_id     TEXT NOT NULL,
		serial_fold   TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL,
		blood_type    TEXT NOT NULL,
		rh_factor     TEXT NOT NULL,
		combined_type TEXT NOT NULL,
		volume_ml     INTEGER NOT NULL CHECK (volume_ml > 0),
		collected_at  TEXT NOT NULL,
		expires_at    TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'Stored',
		created_at    TEXT NOT NULL,
		modified_at   TEXT,
		CHECK (expires_at > collected_at)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_stock_units_stored_serial
		ON stock_units (category, serial_id) WHERE status = 'Stored'`,
	`CREATE INDEX IF NOT EXISTS ix_stock_units_category_created
		ON stock_units (category, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS release_records (
		id                     TEXT PRIMARY KEY,
		batch_id               TEXT NOT NULL,
		original_id            TEXT NOT NULL,
		serial_id              TEXT NOT NULL,
		category               TEXT NOT NULL,
		blood_type             TEXT NOT NULL,
		rh_factor              TEXT NOT NULL,
		combined_type          TEXT NOT NULL,
		volume_ml              INTEGER NOT NULL,
		collected_at           TEXT NOT NULL,
		expires_at             TEXT NOT NULL,
		status                 TEXT NOT NULL,
		created_at             TEXT NOT NULL,
		modified_at            TEXT,
		receiving_facility     TEXT NOT NULL DEFAULT '',
		address                TEXT NOT NULL DEFAULT '',
		contact_number         TEXT NOT NULL DEFAULT '',
		classification         TEXT NOT NULL DEFAULT '',
		authorized_recipient   TEXT NOT NULL DEFAULT '',
		recipient_designation  TEXT NOT NULL DEFAULT '',
		date_of_release        TEXT NOT NULL,
		condition_upon_release TEXT NOT NULL DEFAULT '',
		request_reference      TEXT NOT NULL DEFAULT '',
		released_by            TEXT NOT NULL DEFAULT '',
		released_at            TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_release_records_category_released
		ON release_records (category, released_at DESC)`,
	`CREATE INDEX IF NOT EXISTS ix_release_records_batch
		ON release_records (batch_id)`,
}

// Migrate crea tablas e índices si no existen y completa serial_fold en bases anteriores a la columna.
func Migrate(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return storageErr("migrate", err)
		}
	}
	if err := addSerialFoldColumn(ctx, q); err != nil {
		return err
	}
	return backfillSerialFold(ctx, q)
}

// addSerialFoldColumn SQLite no tiene ADD COLUMN IF NOT EXISTS.
func addSerialFoldColumn(ctx context.Context, q Querier) error {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('stock_units') WHERE name = 'serial_fold'`).Scan(&n)
	if err != nil {
		return storageErr("migrate serial_fold", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := q.ExecContext(ctx, `ALTER TABLE stock_units ADD COLUMN serial_fold TEXT NOT NULL DEFAULT ''`); err != nil {
		return storageErr("migrate serial_fold", err)
	}
	return nil
}

// backfillSerialFold pliega en Go los seriales sin clave. Lee todo antes de escribir:
// la base usa una sola conexión.
func backfillSerialFold(ctx context.Context, q Querier) error {
	rows, err := q.QueryContext(ctx, `SELECT id, serial_id FROM stock_units WHERE serial_fold = ''`)
	if err != nil {
		return storageErr("backfill serial_fold", err)
	}
	pending := map[string]string{}
	for rows.Next() {
		var id, serial string
		if err := rows.Scan(&id, &serial); err != nil {
			_ = rows.Close()
			return storageErr("backfill serial_fold", err)
		}
		pending[id] = serial
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return storageErr("backfill serial_fold", err)
	}
	_ = rows.Close()

	for id, serial := range pending {
		if _, err := q.ExecContext(ctx, `UPDATE stock_units SET serial_fold = ? WHERE id = ?`,
			inventory.FoldSearch(serial), id); err != nil {
			return storageErr("backfill serial_fold", err)
		}
	}
	return nil
}
