package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bloodbank-api/internal/domain"
	"github.com/jhoicas/bloodbank-api/internal/domain/entity"
	"github.com/jhoicas/bloodbank-api/internal/domain/inventory"
)

// ── Combine ───────────────────────────────────────────────────────────────────

func TestCombine_TodasLasCombinaciones(t *testing.T) {
	cases := map[string][2]string{
		"A+":  {entity.BloodTypeA, entity.RhPositive},
		"A-":  {entity.BloodTypeA, entity.RhNegative},
		"B+":  {entity.BloodTypeB, entity.RhPositive},
		"AB-": {entity.BloodTypeAB, entity.RhNegative},
		"O+":  {entity.BloodTypeO, entity.RhPositive},
		"O-":  {entity.BloodTypeO, entity.RhNegative},
	}
	for want, in := range cases {
		assert.Equal(t, want, inventory.Combine(in[0], in[1]))
	}
}

func TestParseBloodType_NormalizaEntrada(t *testing.T) {
	for in, want := range map[string]string{"ab": "AB", " o ": "O", "A": "A", "b": "B"} {
		got, err := inventory.ParseBloodType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := inventory.ParseBloodType("C")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = inventory.ParseBloodType("  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseRhFactor_Alias(t *testing.T) {
	for in, want := range map[string]string{"+": "+", "pos": "+", "Positive": "+", "-": "-", "neg": "-", "NEGATIVE": "-"} {
		got, err := inventory.ParseRhFactor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := inventory.ParseRhFactor("x")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ── CategoryPolicy ────────────────────────────────────────────────────────────

func TestPolicyFor_TresCategorias(t *testing.T) {
	cats := inventory.Categories()
	require.Len(t, cats, 3)

	for _, c := range cats {
		p, err := inventory.PolicyFor(c)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusStored, p.DefaultStatus)
		assert.True(t, p.Allows(entity.BloodTypeO, entity.RhNegative))
		assert.False(t, p.Allows("C", entity.RhNegative))
		assert.False(t, p.Allows(entity.BloodTypeO, "?"))
	}

	_, err := inventory.PolicyFor("Whole Blood")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseCategory_EtiquetaSlugYCodigo(t *testing.T) {
	for in, want := range map[string]entity.Category{
		"Red Blood Cell": entity.CategoryRedBloodCell,
		"red-blood-cell": entity.CategoryRedBloodCell,
		"rbc":            entity.CategoryRedBloodCell,
		"PLATELET":       entity.CategoryPlatelet,
		"plt":            entity.CategoryPlatelet,
		"plasma":         entity.CategoryPlasma,
		"PLS":            entity.CategoryPlasma,
	} {
		got, err := inventory.ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := inventory.ParseCategory("cryo")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ── ValidateUnit ──────────────────────────────────────────────────────────────

func validUnit() *entity.StockUnit {
	collected := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &entity.StockUnit{
		SerialID:    "RBC-001",
		Category:    entity.CategoryRedBloodCell,
		BloodType:   entity.BloodTypeO,
		RhFactor:    entity.RhPositive,
		VolumeMl:    450,
		CollectedAt: collected,
		ExpiresAt:   collected.AddDate(0, 0, 42),
	}
}

func TestValidateUnit_Valida(t *testing.T) {
	p, _ := inventory.PolicyFor(entity.CategoryRedBloodCell)
	assert.NoError(t, inventory.ValidateUnit(p, validUnit()))
}

func TestValidateUnit_Rechazos(t *testing.T) {
	p, _ := inventory.PolicyFor(entity.CategoryRedBloodCell)

	mutations := map[string]func(u *entity.StockUnit){
		"volumen cero":        func(u *entity.StockUnit) { u.VolumeMl = 0 },
		"volumen negativo":    func(u *entity.StockUnit) { u.VolumeMl = -10 },
		"serial vacío":        func(u *entity.StockUnit) { u.SerialID = "  " },
		"sin grupo":           func(u *entity.StockUnit) { u.BloodType = "" },
		"grupo no permitido":  func(u *entity.StockUnit) { u.BloodType = "C" },
		"vence al recolectar": func(u *entity.StockUnit) { u.ExpiresAt = u.CollectedAt },
		"vence antes":         func(u *entity.StockUnit) { u.ExpiresAt = u.CollectedAt.Add(-time.Hour) },
		"sin recolección":     func(u *entity.StockUnit) { u.CollectedAt = time.Time{} },
		"otra categoría":      func(u *entity.StockUnit) { u.Category = entity.CategoryPlasma },
	}
	for name, mutate := range mutations {
		u := validUnit()
		mutate(u)
		assert.ErrorIs(t, inventory.ValidateUnit(p, u), domain.ErrValidation, name)
	}
	assert.ErrorIs(t, inventory.ValidateUnit(p, nil), domain.ErrValidation)
}

// ── FoldSearch / CalendarDay ──────────────────────────────────────────────────

func TestFoldSearch_UnicodeIgualQueTermino(t *testing.T) {
	assert.Equal(t, inventory.FoldSearch("ñu"), inventory.FoldSearch(" ÑU "))
	assert.Contains(t, inventory.FoldSearch("ÑU-001"), inventory.FoldSearch("Ñu"))
	assert.Equal(t, "rbc-001", inventory.FoldSearch("RBC-001"))
}

func TestCalendarDay_DiaUTC(t *testing.T) {
	bogota := time.FixedZone("COT", -5*60*60)
	got := inventory.CalendarDay(time.Date(2025, 1, 1, 22, 0, 0, 0, bogota))
	assert.True(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC).Equal(got))
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, inventory.CalendarDay(time.Time{}).IsZero())
}
