package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bloodbank-api/internal/domain"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/inventory"
	"github.com/jhoicas/bloodbank-api/internal/domain/repository"
)

// ReleaseUseCase mueve unidades del inventario activo al archivo de liberaciones.
// La liberación elimina físicamente la fila de stock: es irreversible salvo reinsertando
// desde el archivo.
type ReleaseUseCase struct {
	txRunner    TxRunner
	releaseRepo repository.ReleaseRecordRepository
	metrics     MetricsRecorder
	log         zerolog.Logger
	now         func() time.Time
}

// NewReleaseUseCase construye el coordinador de liberaciones. releaseRepo se usa solo para lecturas.
func NewReleaseUseCase(
	txRunner TxRunner,
	releaseRepo repository.ReleaseRecordRepository,
	metrics MetricsRecorder,
	log zerolog.Logger,
) *ReleaseUseCase {
	return &ReleaseUseCase{
		txRunner:    txRunner,
		releaseRepo: releaseRepo,
		metrics:     metricsOrNoop(metrics),
		log:         log.With().Str("component", "release").Logger(),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *ReleaseUseCase) WithClock(now func() time.Time) *ReleaseUseCase {
	uc.now = now
	return uc
}

// ReleaseMetadata datos del destino de la liberación. Textos omitidos quedan vacíos;
// DateOfRelease nil toma la hora de la transacción.
type ReleaseMetadata struct {
	ReceivingFacility    string
	Address              string
	ContactNumber        string
	Classification       string
	AuthorizedRecipient  string
	RecipientDesignation string
	DateOfRelease        *time.Time
	ConditionUponRelease string
	RequestReference     string
}

// ReleaseRequest entrada de Release.
type ReleaseRequest struct {
	Category   entity.Category
	SerialIDs  []string
	Metadata   ReleaseMetadata
	ReleasedBy string
}

// ReleaseResult cantidad liberada y seriales solicitados que no coincidieron con una unidad Stored.
type ReleaseResult struct {
	BatchID       string
	ReleasedCount int
	Unmatched     []string
	Records       []*entity.ReleaseRecord
}

// Release ejecuta en una sola transacción:
//  1. selecciona (y bloquea) las unidades Stored de la categoría con serial en la solicitud;
//  2. sin coincidencias devuelve ErrNotFound sin escribir;
//  3. construye un ReleaseRecord por unidad;
//  4. inserta los registros en el archivo;
//  5. elimina las filas origen (categoría + Stored + IDs seleccionados);
//  6. Commit. Cualquier error revierte todo: ningún registro sin su baja ni baja sin registro.
func (uc *ReleaseUseCase) Release(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error) {
	start := time.Now()
	res, err := uc.release(ctx, req)
	uc.metrics.Observe(ctx, "release", err == nil, time.Since(start))
	if err != nil {
		uc.log.Error().Err(err).
			Str("category", req.Category.String()).
			Strs("serial_ids", req.SerialIDs).
			Msg("liberación revertida")
		return nil, err
	}

	volume := 0
	for _, r := range res.Records {
		volume += r.VolumeMl
	}
	uc.metrics.ObserveRelease(ctx, req.Category.String(), res.ReleasedCount, volume)
	uc.log.Info().
		Str("category", req.Category.String()).
		Str("batch_id", res.BatchID).
		Int("released", res.ReleasedCount).
		Strs("unmatched", res.Unmatched).
		Str("released_by", req.ReleasedBy).
		Msg("unidades liberadas")
	return res, nil
}

func (uc *ReleaseUseCase) release(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error) {
	if _, err := inventory.PolicyFor(req.Category); err != nil {
		return nil, err
	}
	serials := cleanKeys(req.SerialIDs)
	if len(serials) == 0 {
		return nil, fmt.Errorf("%w: serial_ids es requerido", domain.ErrValidation)
	}

	result := &ReleaseResult{BatchID: uuid.New().String()}
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockUnitRepository, releaseRepo repository.ReleaseRecordRepository) error {
		units, err := stockRepo.LockStoredBySerials(ctx, req.Category, serials)
		if err != nil {
			return err
		}
		if len(units) == 0 {
			return fmt.Errorf("%w: no se encontraron registros de stock válidos para liberar", domain.ErrNotFound)
		}

		releasedAt := uc.now().UTC()
		records := make([]*entity.ReleaseRecord, 0, len(units))
		ids := make([]string, 0, len(units))
		for _, u := range units {
			records = append(records, buildReleaseRecord(u, req, result.BatchID, releasedAt))
			ids = append(ids, u.ID)
		}
		if err := releaseRepo.CreateBatch(ctx, records); err != nil {
			return err
		}

		deleted, err := stockRepo.DeleteStored(ctx, req.Category, ids)
		if err != nil {
			return err
		}
		if deleted != int64(len(ids)) {
			return fmt.Errorf("%w: se archivaron %d unidades pero se eliminaron %d", domain.ErrConflict, len(ids), deleted)
		}

		result.Records = records
		result.ReleasedCount = len(records)
		result.Unmatched = unmatchedSerials(serials, units)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// buildReleaseRecord copia la unidad tal cual (incluido CreatedAt original) y agrega los datos del destino.
func buildReleaseRecord(u *entity.StockUnit, req ReleaseRequest, batchID string, releasedAt time.Time) *entity.ReleaseRecord {
	md := req.Metadata
	dateOfRelease := releasedAt
	if md.DateOfRelease != nil && !md.DateOfRelease.IsZero() {
		dateOfRelease = *md.DateOfRelease
	}
	return &entity.ReleaseRecord{
		ID:         uuid.New().String(),
		BatchID:    batchID,
		OriginalID: u.ID,

		SerialID:     u.SerialID,
		Category:     u.Category,
		BloodType:    u.BloodType,
		RhFactor:     u.RhFactor,
		CombinedType: u.CombinedType,
		VolumeMl:     u.VolumeMl,
		CollectedAt:  u.CollectedAt,
		ExpiresAt:    u.ExpiresAt,
		Status:       entity.StatusReleased,
		CreatedAt:    u.CreatedAt,
		ModifiedAt:   u.ModifiedAt,

		ReceivingFacility:    strings.TrimSpace(md.ReceivingFacility),
		Address:              strings.TrimSpace(md.Address),
		ContactNumber:        strings.TrimSpace(md.ContactNumber),
		Classification:       strings.TrimSpace(md.Classification),
		AuthorizedRecipient:  strings.TrimSpace(md.AuthorizedRecipient),
		RecipientDesignation: strings.TrimSpace(md.RecipientDesignation),
		DateOfRelease:        dateOfRelease,
		ConditionUponRelease: strings.TrimSpace(md.ConditionUponRelease),
		RequestReference:     strings.TrimSpace(md.RequestReference),
		ReleasedBy:           strings.TrimSpace(req.ReleasedBy),
		ReleasedAt:           releasedAt,
	}
}

func unmatchedSerials(requested []string, units []*entity.StockUnit) []string {
	matched := make(map[string]struct{}, len(units))
	for _, u := range units {
		matched[u.SerialID] = struct{}{}
	}
	out := []string{}
	for _, s := range requested {
		if _, ok := matched[s]; !ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// ListReleased devuelve el archivo de la categoría, liberaciones más recientes primero.
func (uc *ReleaseUseCase) ListReleased(ctx context.Context, category entity.Category) ([]*entity.ReleaseRecord, error) {
	if _, err := inventory.PolicyFor(category); err != nil {
		return nil, err
	}
	return uc.releaseRepo.ListByCategory(ctx, category)
}

// GetBatch devuelve los registros escritos por una liberación. ErrNotFound si el lote no existe.
func (uc *ReleaseUseCase) GetBatch(ctx context.Context, batchID string) ([]*entity.ReleaseRecord, error) {
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return nil, fmt.Errorf("%w: batch_id es requerido", domain.ErrValidation)
	}
	records, err := uc.releaseRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, batchID)
	}
	return records, nil
}
