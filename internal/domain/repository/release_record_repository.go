package repository

import (
	"context"

	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
)

// ReleaseRecordRepository puerto del archivo de liberaciones. Solo inserción y lectura:
// los registros son inmutables una vez escritos.
type ReleaseRecordRepository interface {
	CreateBatch(ctx context.Context, records []*entity.ReleaseRecord) error
	ListByCategory(ctx context.Context, category entity.Category) ([]*entity.ReleaseRecord, error)
	ListByBatch(ctx context.Context, batchID string) ([]*entity.ReleaseRecord, error)
}
