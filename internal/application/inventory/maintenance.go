package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bloodbank-api/internal/domain/inventory"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
)

// MaintenanceUseCase tareas fuera del flujo de peticiones (CLI de mantenimiento).
type MaintenanceUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
}

// NewMaintenanceUseCase construye el caso de uso.
func NewMaintenanceUseCase(txRunner TxRunner, log zerolog.Logger) *MaintenanceUseCase {
	return &MaintenanceUseCase{txRunner: txRunner, log: log.With().Str("component", "maintenance").Logger()}
}

// RepairReport resultado de RepairCombinedTypes.
type RepairReport struct {
	Scanned  int
	Repaired int
}

// RepairCombinedTypes recalcula el tipo combinado de todo el inventario activo y reescribe
// las filas desviadas en una sola transacción.
func (uc *MaintenanceUseCase) RepairCombinedTypes(ctx context.Context) (RepairReport, error) {
	var report RepairReport
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockUnitRepository, _ repository.ReleaseRecordRepository) error {
		units, err := stockRepo.ListAllStored(ctx)
		if err != nil {
			return err
		}
		report.Scanned = len(units)
		for _, u := range units {
			want := inventory.Combine(u.BloodType, u.RhFactor)
			if u.CombinedType == want {
				continue
			}
			if err := stockRepo.SetCombinedType(ctx, u.ID, want); err != nil {
				return err
			}
			uc.log.Debug().Str("id", u.ID).Str("from", u.CombinedType).Str("to", want).Msg("tipo combinado reparado")
			report.Repaired++
		}
		return nil
	})
	if err != nil {
		return RepairReport{}, err
	}
	uc.log.Info().Int("scanned", report.Scanned).Int("repaired", report.Repaired).Msg("reparación de tipos combinados")
	return report, nil
}
