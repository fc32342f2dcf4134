package datastore

import (
	"context"
	"fmt"

	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
	"github.com/jhoicas/bloodbank-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bloodbank-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/bloodbank-api/pkg/config"
)

// Store agrupa los adaptadores de un motor: repositorios sobre el handle compartido
// y el TxRunner que abre transacciones sobre ese mismo handle.
type Store struct {
	Driver   string
	Stock    repository.StockUnitRepository
	Releases repository.ReleaseRecordRepository
	TxRunner inventory.TxRunner

	migrate func(ctx context.Context) error
	ping    func(ctx context.Context) error
	close   func() error
}

// Open abre el motor indicado por STORE_DRIVER. El llamador es dueño del Store y debe cerrarlo.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return &Store{
			Driver:   config.DriverPostgres,
			Stock:    postgres.NewStockUnitRepository(pool),
			Releases: postgres.NewReleaseRecordRepository(pool),
			TxRunner: postgres.NewTxRunner(pool),
			migrate:  func(ctx context.Context) error { return postgres.Migrate(ctx, pool) },
			ping:     pool.Ping,
			close:    func() error { pool.Close(); return nil },
		}, nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.Store.SQLitePath)
	default:
		return nil, fmt.Errorf("datastore: driver %q no soportado", cfg.Store.Driver)
	}
}

// OpenSQLite abre (o crea) la base SQLite en path.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return &Store{
		Driver:   config.DriverSQLite,
		Stock:    sqlite.NewStockUnitRepository(db),
		Releases: sqlite.NewReleaseRecordRepository(db),
		TxRunner: sqlite.NewTxRunner(db),
		migrate:  func(ctx context.Context) error { return sqlite.Migrate(ctx, db) },
		ping:     db.PingContext,
		close:    db.Close,
	}, nil
}

// Migrate aplica el esquema del motor.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

// Ping verifica la conexión (health check).
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close libera el handle.
func (s *Store) Close() error {
	return s.close()
}
