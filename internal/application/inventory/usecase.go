package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bloodbank-api/internal/domain"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/inventory"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
)

// SerialLookupLimit máximo de candidatos devueltos por la búsqueda aproximada de serial.
const SerialLookupLimit = 5

// StockUseCase operaciones del inventario activo (alta, edición, baja, listados y búsquedas).
// Un único motor para las tres categorías: la categoría selecciona la política.
type StockUseCase struct {
	repo     repository.StockUnitRepository
	txRunner TxRunner
	metrics  MetricsRecorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewStockUseCase construye el caso de uso. metrics puede ser nil.
func NewStockUseCase(
	repo repository.StockUnitRepository,
	txRunner TxRunner,
	metrics MetricsRecorder,
	log zerolog.Logger,
) *StockUseCase {
	return &StockUseCase{
		repo:     repo,
		txRunner: txRunner,
		metrics:  metricsOrNoop(metrics),
		log:      log.With().Str("component", "stock").Logger(),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *StockUseCase) WithClock(now func() time.Time) *StockUseCase {
	uc.now = now
	return uc
}

// StockUnitInput datos de alta de una unidad. BloodType y RhFactor se normalizan.
type StockUnitInput struct {
	SerialID    string
	BloodType   string
	RhFactor    string
	VolumeMl    int
	CollectedAt time.Time // se guarda solo el día calendario (UTC)
	ExpiresAt   time.Time
}

// StockUnitPatch campos editables; nil = sin cambio. La categoría no es editable.
type StockUnitPatch struct {
	SerialID    *string
	BloodType   *string
	RhFactor    *string
	VolumeMl    *int
	CollectedAt *time.Time
	ExpiresAt   *time.Time
}

// SerialLookup resultado de FindBySerial: coincidencia exacta o hasta cinco candidatos.
type SerialLookup struct {
	Exact      *entity.StockUnit
	Candidates []*entity.StockUnit
}

// Found es falso cuando no hubo coincidencia exacta ni aproximada.
func (l SerialLookup) Found() bool {
	return l.Exact != nil || len(l.Candidates) > 0
}

// Add valida y registra una unidad nueva con estado Stored.
func (uc *StockUseCase) Add(ctx context.Context, category entity.Category, in StockUnitInput) (*entity.StockUnit, error) {
	start := time.Now()
	unit, err := uc.add(ctx, category, in)
	uc.metrics.Observe(ctx, "stock.add", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("category", category.String()).
		Str("serial_id", unit.SerialID).
		Str("id", unit.ID).
		Msg("unidad registrada")
	return unit, nil
}

func (uc *StockUseCase) add(ctx context.Context, category entity.Category, in StockUnitInput) (*entity.StockUnit, error) {
	policy, err := inventory.PolicyFor(category)
	if err != nil {
		return nil, err
	}
	bloodType, err := inventory.ParseBloodType(in.BloodType)
	if err != nil {
		return nil, err
	}
	rh, err := inventory.ParseRhFactor(in.RhFactor)
	if err != nil {
		return nil, err
	}

	unit := &entity.StockUnit{
		ID:           uuid.New().String(),
		SerialID:     strings.TrimSpace(in.SerialID),
		Category:     category,
		BloodType:    bloodType,
		RhFactor:     rh,
		CombinedType: inventory.Combine(bloodType, rh),
		VolumeMl:     in.VolumeMl,
		CollectedAt:  inventory.CalendarDay(in.CollectedAt),
		ExpiresAt:    inventory.CalendarDay(in.ExpiresAt),
		Status:       policy.DefaultStatus,
		CreatedAt:    uc.now().UTC(),
	}
	if err := inventory.ValidateUnit(policy, unit); err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetStoredBySerial(ctx, category, unit.SerialID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el serial %s ya está en inventario", domain.ErrConflict, unit.SerialID)
	}
	if err := uc.repo.Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// Update aplica el patch, revalida igual que Add, recalcula el tipo combinado y fija ModifiedAt.
// ErrNotFound si el ID no corresponde a una unidad Stored de la categoría.
func (uc *StockUseCase) Update(ctx context.Context, category entity.Category, id string, patch StockUnitPatch) (*entity.StockUnit, error) {
	start := time.Now()
	policy, err := inventory.PolicyFor(category)
	if err != nil {
		return nil, err
	}

	var updated *entity.StockUnit
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockUnitRepository, _ repository.ReleaseRecordRepository) error {
		current, err := stockRepo.GetByID(ctx, category, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: unidad %s en %s", domain.ErrNotFound, id, policy.Label)
		}

		merged := *current
		if err := applyPatch(&merged, patch); err != nil {
			return err
		}
		merged.CombinedType = inventory.Combine(merged.BloodType, merged.RhFactor)
		if err := inventory.ValidateUnit(policy, &merged); err != nil {
			return err
		}
		if merged.SerialID != current.SerialID {
			other, err := stockRepo.GetStoredBySerial(ctx, category, merged.SerialID)
			if err != nil {
				return err
			}
			if other != nil && other.ID != merged.ID {
				return fmt.Errorf("%w: el serial %s ya está en inventario", domain.ErrConflict, merged.SerialID)
			}
		}
		now := uc.now().UTC()
		merged.ModifiedAt = &now
		if err := stockRepo.Update(ctx, &merged); err != nil {
			return err
		}
		updated = &merged
		return nil
	})
	uc.metrics.Observe(ctx, "stock.update", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("category", category.String()).Str("id", id).Msg("unidad actualizada")
	return updated, nil
}

func applyPatch(u *entity.StockUnit, patch StockUnitPatch) error {
	if patch.SerialID != nil {
		u.SerialID = strings.TrimSpace(*patch.SerialID)
	}
	if patch.BloodType != nil {
		v, err := inventory.ParseBloodType(*patch.BloodType)
		if err != nil {
			return err
		}
		u.BloodType = v
	}
	if patch.RhFactor != nil {
		v, err := inventory.ParseRhFactor(*patch.RhFactor)
		if err != nil {
			return err
		}
		u.RhFactor = v
	}
	if patch.VolumeMl != nil {
		u.VolumeMl = *patch.VolumeMl
	}
	if patch.CollectedAt != nil {
		u.CollectedAt = inventory.CalendarDay(*patch.CollectedAt)
	}
	if patch.ExpiresAt != nil {
		u.ExpiresAt = inventory.CalendarDay(*patch.ExpiresAt)
	}
	return nil
}

// Delete elimina (descarte) las unidades Stored indicadas. IDs inexistentes se ignoran.
func (uc *StockUseCase) Delete(ctx context.Context, category entity.Category, ids []string) (int64, error) {
	if _, err := inventory.PolicyFor(category); err != nil {
		return 0, err
	}
	ids = cleanKeys(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	start := time.Now()
	n, err := uc.repo.DeleteStored(ctx, category, ids)
	uc.metrics.Observe(ctx, "stock.delete", err == nil, time.Since(start))
	if err != nil {
		return 0, err
	}
	uc.log.Info().Str("category", category.String()).Int64("deleted", n).Int("requested", len(ids)).Msg("unidades descartadas")
	return n, nil
}

// List devuelve el inventario Stored de la categoría, más recientes primero.
// status vacío equivale a Stored; las unidades liberadas se consultan en el archivo.
func (uc *StockUseCase) List(ctx context.Context, category entity.Category, status string) ([]*entity.StockUnit, error) {
	if _, err := inventory.PolicyFor(category); err != nil {
		return nil, err
	}
	if s := strings.TrimSpace(status); s != "" && !strings.EqualFold(s, entity.StatusStored) {
		return nil, fmt.Errorf("%w: estado %q no se lista en inventario activo", domain.ErrValidation, status)
	}
	return uc.repo.ListStored(ctx, category)
}

// FindBySerial busca primero la coincidencia exacta; si no hay, hasta cinco candidatos
// cuyo serial contiene el texto (sin distinguir mayúsculas), ordenados por serial.
func (uc *StockUseCase) FindBySerial(ctx context.Context, category entity.Category, serialID string) (SerialLookup, error) {
	if _, err := inventory.PolicyFor(category); err != nil {
		return SerialLookup{}, err
	}
	serialID = strings.TrimSpace(serialID)
	if serialID == "" {
		return SerialLookup{}, fmt.Errorf("%w: serial_id es requerido", domain.ErrValidation)
	}

	exact, err := uc.repo.GetStoredBySerial(ctx, category, serialID)
	if err != nil {
		return SerialLookup{}, err
	}
	if exact != nil {
		return SerialLookup{Exact: exact}, nil
	}
	candidates, err := uc.repo.FindStoredBySerialFragment(ctx, category, foldTerm(serialID), SerialLookupLimit)
	if err != nil {
		return SerialLookup{}, err
	}
	return SerialLookup{Candidates: candidates}, nil
}

// Search busca el término en serial, grupo, estado y Rh. Término vacío lista todo.
func (uc *StockUseCase) Search(ctx context.Context, category entity.Category, term string) ([]*entity.StockUnit, error) {
	if _, err := inventory.PolicyFor(category); err != nil {
		return nil, err
	}
	return uc.repo.SearchStored(ctx, category, foldTerm(term))
}

// foldTerm normaliza el texto de búsqueda igual que el serial plegado que guardan los adaptadores.
func foldTerm(s string) string {
	return inventory.FoldSearch(s)
}

// cleanKeys recorta, descarta vacíos y elimina duplicados conservando el orden.
func cleanKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
