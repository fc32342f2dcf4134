package inventory_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
	"github.com/jhoicas/bloodbank-api/internal/infrastructure/datastore"
)

var fixedNow = time.Date(2025, 1, 5, 10, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newStore abre una base SQLite nueva por prueba.
func newStore(t *testing.T) *datastore.Store {
	t.Helper()
	ctx := context.Background()
	store, err := datastore.OpenSQLite(ctx, filepath.Join(t.TempDir(), "bank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

type captureMetrics struct {
	mu       sync.Mutex
	observed map[string][]bool
	volume   map[string]int
}

func newCaptureMetrics() *captureMetrics {
	return &captureMetrics{observed: map[string][]bool{}, volume: map[string]int{}}
}

func (c *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observed[op] = append(c.observed[op], success)
}

func (c *captureMetrics) ObserveRelease(_ context.Context, category string, _ int, volumeMl int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume[category] += volumeMl
}

func (c *captureMetrics) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.observed[op] {
		if s == success {
			return true
		}
	}
	return false
}

// tickingClock avanza un segundo en cada lectura: created_at distintos y orden estable.
func tickingClock(start time.Time) func() time.Time {
	var (
		mu sync.Mutex
		n  int
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

type fixture struct {
	store    *datastore.Store
	stock    *inventory.StockUseCase
	releases *inventory.ReleaseUseCase
	metrics  *captureMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newStore(t)
	metrics := newCaptureMetrics()
	log := zerolog.Nop()
	clock := tickingClock(fixedNow)
	return &fixture{
		store:    store,
		stock:    inventory.NewStockUseCase(store.Stock, store.TxRunner, metrics, log).WithClock(clock),
		releases: inventory.NewReleaseUseCase(store.TxRunner, store.Releases, metrics, log).WithClock(clock),
		metrics:  metrics,
	}
}

func unitInput(serial, bloodType, rh string, volume int) inventory.StockUnitInput {
	return inventory.StockUnitInput{
		SerialID:    serial,
		BloodType:   bloodType,
		RhFactor:    rh,
		VolumeMl:    volume,
		CollectedAt: day(2025, 1, 1),
		ExpiresAt:   day(2025, 2, 12),
	}
}

func (f *fixture) add(t *testing.T, category entity.Category, in inventory.StockUnitInput) *entity.StockUnit {
	t.Helper()
	u, err := f.stock.Add(context.Background(), category, in)
	require.NoError(t, err)
	return u
}

func (f *fixture) stored(t *testing.T, category entity.Category) []*entity.StockUnit {
	t.Helper()
	units, err := f.stock.List(context.Background(), category, "")
	require.NoError(t, err)
	return units
}

func (f *fixture) archived(t *testing.T, category entity.Category) []*entity.ReleaseRecord {
	t.Helper()
	records, err := f.releases.ListReleased(context.Background(), category)
	require.NoError(t, err)
	return records
}

// faultyTxRunner envuelve un TxRunner real y sustituye el repositorio de stock de la tx.
type faultyTxRunner struct {
	inner inventory.TxRunner
	wrap  func(repository.StockUnitRepository) repository.StockUnitRepository
}

func (r faultyTxRunner) Run(ctx context.Context, fn func(repository.StockUnitRepository, repository.ReleaseRecordRepository) error) error {
	return r.inner.Run(ctx, func(stockRepo repository.StockUnitRepository, releaseRepo repository.ReleaseRecordRepository) error {
		return fn(r.wrap(stockRepo), releaseRepo)
	})
}

// failingDelete falla la baja después de que el archivo ya fue escrito en la tx.
type failingDelete struct {
	repository.StockUnitRepository
	err error
}

func (f failingDelete) DeleteStored(context.Context, entity.Category, []string) (int64, error) {
	return 0, f.err
}

// shortDelete borra de verdad pero informa una fila menos.
type shortDelete struct {
	repository.StockUnitRepository
}

func (s shortDelete) DeleteStored(ctx context.Context, category entity.Category, ids []string) (int64, error) {
	n, err := s.StockUnitRepository.DeleteStored(ctx, category, ids)
	return n - 1, err
}
