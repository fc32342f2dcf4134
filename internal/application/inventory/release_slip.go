package inventory

import (
	"context"
	"fmt"
)

// ReleaseSlipUseCase genera el comprobante de entrega de un lote liberado.
type ReleaseSlipUseCase struct {
	releases  *ReleaseUseCase
	generator ReleaseSlipGenerator
}

// NewReleaseSlipUseCase construye el caso de uso.
func NewReleaseSlipUseCase(releases *ReleaseUseCase, generator ReleaseSlipGenerator) *ReleaseSlipUseCase {
	return &ReleaseSlipUseCase{releases: releases, generator: generator}
}

// DownloadReleaseSlip devuelve (pdfBytes, filename, nil) o ErrNotFound si el lote no existe.
func (uc *ReleaseSlipUseCase) DownloadReleaseSlip(ctx context.Context, batchID string) ([]byte, string, error) {
	records, err := uc.releases.GetBatch(ctx, batchID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateReleaseSlip(ctx, records)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: comprobante de liberación: %w", err)
	}
	return pdf, fmt.Sprintf("liberacion-%s.pdf", records[0].BatchID), nil
}
