package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/bloodbank-api/internal/application/dto"
	"github.com/jhoicas/bloodbank-api/internal/domain"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/inventory"
)

// AddFromRequest adapta el request HTTP al caso de uso Add.
func (uc *StockUseCase) AddFromRequest(ctx context.Context, category entity.Category, in dto.CreateStockUnitRequest) (*dto.StockUnitResponse, error) {
	collected, err := ParseDate("collection", in.Collection)
	if err != nil {
		return nil, err
	}
	expires, err := ParseDate("expiration", in.Expiration)
	if err != nil {
		return nil, err
	}
	unit, err := uc.Add(ctx, category, StockUnitInput{
		SerialID:    in.SerialID,
		BloodType:   in.Type,
		RhFactor:    in.RhFactor,
		VolumeMl:    in.Volume,
		CollectedAt: collected,
		ExpiresAt:   expires,
	})
	if err != nil {
		return nil, err
	}
	return ToStockUnitResponse(unit), nil
}

// UpdateFromRequest adapta el request HTTP al caso de uso Update.
func (uc *StockUseCase) UpdateFromRequest(ctx context.Context, category entity.Category, id string, in dto.UpdateStockUnitRequest) (*dto.StockUnitResponse, error) {
	patch := StockUnitPatch{
		SerialID:  in.SerialID,
		BloodType: in.Type,
		RhFactor:  in.RhFactor,
		VolumeMl:  in.Volume,
	}
	if in.Collection != nil {
		t, err := ParseDate("collection", *in.Collection)
		if err != nil {
			return nil, err
		}
		patch.CollectedAt = &t
	}
	if in.Expiration != nil {
		t, err := ParseDate("expiration", *in.Expiration)
		if err != nil {
			return nil, err
		}
		patch.ExpiresAt = &t
	}
	unit, err := uc.Update(ctx, category, id, patch)
	if err != nil {
		return nil, err
	}
	return ToStockUnitResponse(unit), nil
}

// ListFromRequest lista y adapta a la respuesta HTTP.
func (uc *StockUseCase) ListFromRequest(ctx context.Context, category entity.Category, status string) (*dto.StockUnitListResponse, error) {
	units, err := uc.List(ctx, category, status)
	if err != nil {
		return nil, err
	}
	return toStockUnitList(units), nil
}

// SearchFromRequest busca y adapta a la respuesta HTTP.
func (uc *StockUseCase) SearchFromRequest(ctx context.Context, category entity.Category, term string) (*dto.StockUnitListResponse, error) {
	units, err := uc.Search(ctx, category, term)
	if err != nil {
		return nil, err
	}
	return toStockUnitList(units), nil
}

// FindBySerialFromRequest devuelve ErrNotFound cuando no hay coincidencia exacta ni candidatos.
func (uc *StockUseCase) FindBySerialFromRequest(ctx context.Context, category entity.Category, serialID string) (*dto.SerialLookupResponse, error) {
	lookup, err := uc.FindBySerial(ctx, category, serialID)
	if err != nil {
		return nil, err
	}
	if !lookup.Found() {
		return nil, fmt.Errorf("%w: serial %s", domain.ErrNotFound, strings.TrimSpace(serialID))
	}
	out := &dto.SerialLookupResponse{Match: ToStockUnitResponse(lookup.Exact)}
	for _, c := range lookup.Candidates {
		out.Candidates = append(out.Candidates, *ToStockUnitResponse(c))
	}
	return out, nil
}

// ReleaseFromRequest adapta el request HTTP al caso de uso Release. releasedBy viene del token.
func (uc *ReleaseUseCase) ReleaseFromRequest(ctx context.Context, category entity.Category, releasedBy string, in dto.ReleaseRequest) (*dto.ReleaseResponse, error) {
	md := ReleaseMetadata{
		ReceivingFacility:    in.ReceivingFacility,
		Address:              in.Address,
		ContactNumber:        in.ContactNumber,
		Classification:       in.Classification,
		AuthorizedRecipient:  in.AuthorizedRecipient,
		RecipientDesignation: in.RecipientDesignation,
		ConditionUponRelease: in.ConditionUponRelease,
		RequestReference:     in.RequestReference,
	}
	if strings.TrimSpace(in.DateOfRelease) != "" {
		t, err := ParseTimestamp("date_of_release", in.DateOfRelease)
		if err != nil {
			return nil, err
		}
		md.DateOfRelease = &t
	}
	res, err := uc.Release(ctx, ReleaseRequest{
		Category:   category,
		SerialIDs:  in.SerialIDs,
		Metadata:   md,
		ReleasedBy: releasedBy,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ReleaseResponse{
		BatchID:       res.BatchID,
		ReleasedCount: res.ReleasedCount,
		Unmatched:     res.Unmatched,
	}, nil
}

// ListReleasedFromRequest adapta el archivo de la categoría a la respuesta HTTP.
func (uc *ReleaseUseCase) ListReleasedFromRequest(ctx context.Context, category entity.Category) (*dto.ReleaseRecordListResponse, error) {
	records, err := uc.ListReleased(ctx, category)
	if err != nil {
		return nil, err
	}
	return toReleaseRecordList(records), nil
}

// GetBatchFromRequest adapta un lote a la respuesta HTTP.
func (uc *ReleaseUseCase) GetBatchFromRequest(ctx context.Context, batchID string) (*dto.ReleaseRecordListResponse, error) {
	records, err := uc.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return toReleaseRecordList(records), nil
}

// ParseDate acepta YYYY-MM-DD, YYYY-MM-DD HH:MM:SS o RFC3339 y devuelve el día calendario en UTC.
// Vacío o inválido es ErrValidation.
func ParseDate(field, s string) (time.Time, error) {
	t, err := ParseTimestamp(field, s)
	if err != nil {
		return time.Time{}, err
	}
	return inventory.CalendarDay(t), nil
}

// ParseTimestamp igual que ParseDate pero conserva la hora.
func ParseTimestamp(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: %s es requerido", domain.ErrValidation, field)
	}
	for _, layout := range []string{dto.DateLayout, dto.TimestampLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrValidation, field)
}

// ToStockUnitResponse mapea la entidad a la frontera; nil devuelve nil.
func ToStockUnitResponse(u *entity.StockUnit) *dto.StockUnitResponse {
	if u == nil {
		return nil
	}
	return &dto.StockUnitResponse{
		ID:           u.ID,
		SerialID:     u.SerialID,
		Category:     u.Category.String(),
		Type:         u.BloodType,
		RhFactor:     u.RhFactor,
		CombinedType: u.CombinedType,
		Volume:       u.VolumeMl,
		Collection:   u.CollectedAt.UTC().Format(dto.DateLayout),
		Expiration:   u.ExpiresAt.UTC().Format(dto.DateLayout),
		Status:       u.Status,
		CreatedAt:    formatTimestamp(u.CreatedAt),
		ModifiedAt:   formatOptionalTimestamp(u.ModifiedAt),
	}
}

// ToReleaseRecordResponse mapea un registro del archivo a la frontera.
func ToReleaseRecordResponse(r *entity.ReleaseRecord) *dto.ReleaseRecordResponse {
	if r == nil {
		return nil
	}
	return &dto.ReleaseRecordResponse{
		ID:                   r.ID,
		BatchID:              r.BatchID,
		OriginalID:           r.OriginalID,
		SerialID:             r.SerialID,
		Category:             r.Category.String(),
		Type:                 r.BloodType,
		RhFactor:             r.RhFactor,
		CombinedType:         r.CombinedType,
		Volume:               r.VolumeMl,
		Collection:           r.CollectedAt.UTC().Format(dto.DateLayout),
		Expiration:           r.ExpiresAt.UTC().Format(dto.DateLayout),
		Status:               r.Status,
		CreatedAt:            formatTimestamp(r.CreatedAt),
		ModifiedAt:           formatOptionalTimestamp(r.ModifiedAt),
		ReceivingFacility:    r.ReceivingFacility,
		Address:              r.Address,
		ContactNumber:        r.ContactNumber,
		Classification:       r.Classification,
		AuthorizedRecipient:  r.AuthorizedRecipient,
		RecipientDesignation: r.RecipientDesignation,
		DateOfRelease:        formatTimestamp(r.DateOfRelease),
		ConditionUponRelease: r.ConditionUponRelease,
		RequestReference:     r.RequestReference,
		ReleasedBy:           r.ReleasedBy,
		ReleasedAt:           formatTimestamp(r.ReleasedAt),
	}
}

func toStockUnitList(units []*entity.StockUnit) *dto.StockUnitListResponse {
	items := make([]dto.StockUnitResponse, 0, len(units))
	for _, u := range units {
		items = append(items, *ToStockUnitResponse(u))
	}
	return &dto.StockUnitListResponse{Items: items, Total: len(items)}
}

func toReleaseRecordList(records []*entity.ReleaseRecord) *dto.ReleaseRecordListResponse {
	items := make([]dto.ReleaseRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, *ToReleaseRecordResponse(r))
	}
	return &dto.ReleaseRecordListResponse{Items: items, Total: len(items)}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(dto.TimestampLayout)
}

func formatOptionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTimestamp(*t)
	return &s
}
