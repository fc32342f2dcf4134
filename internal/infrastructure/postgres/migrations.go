package postgres

import (
	"context"

	"github.com/jhoicas/bloodbank-api/internal/domain/inventory"
)

// schema aplica el esquema del inventario. Cada sentencia es idempotente.
// El índice único parcial impide dos unidades Stored con el mismo serial en una categoría.
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
		collected_at  DATE NOT NULL,
		expires_at    DATE NOT NULL,
		status        TEXT NOT NULL DEFAULT 'Stored',
		created_at    TIMESTAMPTZ NOT NULL,
		modified_at   TIMESTAMPTZ,
		CHECK (expires_at > collected_at)
	)`,
	`ALTER TABLE stock_units ADD COLUMN IF NOT EXISTS serial_fold TEXT NOT NULL DEFAULT ''`,
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
		collected_at           DATE NOT NULL,
		expires_at             DATE NOT NULL,
		status                 TEXT NOT NULL,
		created_at             TIMESTAMPTZ NOT NULL,
		modified_at            TIMESTAMPTZ,
		receiving_facility     TEXT NOT NULL DEFAULT '',
		address                TEXT NOT NULL DEFAULT '',
		contact_number         TEXT NOT NULL DEFAULT '',
		classification         TEXT NOT NULL DEFAULT '',
		authorized_recipient   TEXT NOT NULL DEFAULT '',
		recipient_designation  TEXT NOT NULL DEFAULT '',
		date_of_release        TIMESTAMPTZ NOT NULL,
		condition_upon_release TEXT NOT NULL DEFAULT '',
		request_reference      TEXT NOT NULL DEFAULT '',
		released_by            TEXT NOT NULL DEFAULT '',
		released_at            TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_release_records_category_released
		ON release_records (category, released_at DESC)`,
	`CREATE INDEX IF NOT EXISTS ix_release_records_batch
		ON release_records (batch_id)`,
}

// Migrate crea tablas e índices si no existen y completa serial_fold en filas anteriores a la columna.
func Migrate(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return storageErr("migrate", err)
		}
	}
	return backfillSerialFold(ctx, q)
}

// backfillSerialFold el plegado Unicode se calcula en Go para que coincida con el término de búsqueda.
func backfillSerialFold(ctx context.Context, q Querier) error {
	rows, err := q.Query(ctx, `SELECT id, serial_id FROM stock_units WHERE serial_fold = ''`)
	if err != nil {
		return storageErr("backfill serial_fold", err)
	}
	pending := map[string]string{}
	for rows.Next() {
		var id, serial string
		if err := rows.Scan(&id, &serial); err != nil {
			rows.Close()
			return storageErr("backfill serial_fold", err)
		}
		pending[id] = serial
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return storageErr("backfill serial_fold", err)
	}

	for id, serial := range pending {
		if _, err := q.Exec(ctx, `UPDATE stock_units SET serial_fold = $1 WHERE id = $2`,
			inventory.FoldSearch(serial), id); err != nil {
			return storageErr("backfill serial_fold", err)
		}
	}
	return nil
}
