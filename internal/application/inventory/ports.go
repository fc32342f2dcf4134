package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad para la liberación.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockUnitRepository,
		releaseRepo repository.ReleaseRecordRepository,
	) error) error
}

// MetricsRecorder recibe el resultado de cada operación del motor.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	ObserveRelease(ctx context.Context, category string, units, volumeMl int)
}

// ReleaseSlipGenerator genera el comprobante (PDF) de un lote liberado.
type ReleaseSlipGenerator interface {
	GenerateReleaseSlip(ctx context.Context, records []*entity.ReleaseRecord) ([]byte, error)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

func (noopMetrics) ObserveRelease(context.Context, string, int, int) {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
