// Package pdf genera el comprobante de entrega de un lote de hemocomponentes liberados.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Banco de sangre + categoría │  Lote + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DESTINO: Institución / Dirección / Contacto                 │
//	│  RECEPTOR: Autorizado + Cargo / Clasificación / Solicitud    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Serial | Tipo | Volumen | Extracción | Vencimiento   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Unidades / Volumen (L)                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR del lote + firmas                                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
)

var _ inventory.ReleaseSlipGenerator = (*MarotoReleaseSlipGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 140, Green: 20, Blue: 30}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReleaseSlipGenerator implementa inventory.ReleaseSlipGenerator usando Maroto v2.
type MarotoReleaseSlipGenerator struct {
	issuer string
}

// NewMarotoReleaseSlipGenerator construye el generador. issuer es el nombre del banco de sangre.
func NewMarotoReleaseSlipGenerator(issuer string) *MarotoReleaseSlipGenerator {
	return &MarotoReleaseSlipGenerator{issuer: issuer}
}

// GenerateReleaseSlip genera el PDF de un lote y devuelve sus bytes. Todos los registros
// deben pertenecer al mismo lote.
func (g *MarotoReleaseSlipGenerator) GenerateReleaseSlip(_ context.Context, records []*entity.ReleaseRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("pdf: lote vacío")
	}
	first := records[0]
	for _, r := range records[1:] {
		if r.BatchID != first.BatchID {
			return nil, fmt.Errorf("pdf: registros de lotes distintos (%s, %s)", first.BatchID, r.BatchID)
		}
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de liberación", true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.issuer, first))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(destinationRow(first))
	m.AddRows(recipientRow(first))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(records)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(records))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(first)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(issuer string, r *entity.ReleaseRecord) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(issuer, "Banco de Sangre"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Categoría: "+r.Category.String(), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE LIBERACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(shortBatch(r.BatchID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+r.DateOfRelease.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func destinationRow(r *entity.ReleaseRecord) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("INSTITUCIÓN RECEPTORA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(r.ReceivingFacility, "-"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s",
				nonEmpty(r.Address, "-"),
				nonEmpty(r.ContactNumber, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func recipientRow(r *entity.ReleaseRecord) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RECIBE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s (%s)",
				nonEmpty(r.AuthorizedRecipient, "-"),
				nonEmpty(r.RecipientDesignation, "-"),
			), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Clasificación: %s   |   Solicitud: %s   |   Condición: %s",
				nonEmpty(r.Classification, "-"),
				nonEmpty(r.RequestReference, "-"),
				nonEmpty(r.ConditionUponRelease, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Serial", 4, align.Left),
		h("Tipo", 2, align.Center),
		h("Volumen (ml)", 2, align.Right),
		h("Extracción", 2, align.Center),
		h("Vencimiento", 2, align.Center),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por unidad liberada.
func tableDetailRows(records []*entity.ReleaseRecord) []core.Row {
	result := make([]core.Row, 0, len(records))
	for _, r := range records {
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(r.SerialID, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(r.CombinedType, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(fmt.Sprintf("%d", r.VolumeMl), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(r.CollectedAt.Format("02/01/2006"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(r.ExpiresAt.Format("02/01/2006"), props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

func totalsRow(records []*entity.ReleaseRecord) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label("Unidades:"), label("Volumen total:")),
		col.New(3).Add(
			value(fmt.Sprintf("%d", len(records))),
			value(TotalLitres(records).StringFixed(2)+" L"),
		),
	)
}

func footerRows(r *entity.ReleaseRecord) []core.Row {
	return []core.Row{
		row.New(40).Add(
			col.New(4).Add(code.NewQr(r.BatchID, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New("Lote: "+r.BatchID, props.Text{Size: 7, Top: 2, Left: 3, Color: colorGray}),
				text.New("Liberado por: "+nonEmpty(r.ReleasedBy, "-"), props.Text{Size: 8, Top: 8, Left: 3}),
				text.New("Registrado: "+r.ReleasedAt.UTC().Format("2006-01-02 15:04:05")+" UTC", props.Text{
					Size: 7, Top: 14, Left: 3, Color: colorGray,
				}),
				text.New("Firma de quien recibe: ______________________________", props.Text{
					Size: 9, Top: 28, Left: 3,
				}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// TotalLitres suma el volumen del lote en litros.
func TotalLitres(records []*entity.ReleaseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(decimal.NewFromInt(int64(r.VolumeMl)))
	}
	return total.Div(decimal.NewFromInt(1000))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// shortBatch primeros 8 caracteres del lote como número de comprobante.
func shortBatch(batchID string) string {
	if len(batchID) > 8 {
		batchID = batchID[:8]
	}
	return "N° " + batchID
}
