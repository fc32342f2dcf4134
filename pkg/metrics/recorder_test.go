package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
	"github.com/jhoicas/bloodbank-api/pkg/metrics"
)

var _ inventory.MetricsRecorder = (*metrics.Recorder)(nil)

func TestRecorder_Observe(t *testing.T) {
	r := metrics.NewRecorder("test")
	ctx := context.Background()

	r.Observe(ctx, "release", true, 10*time.Millisecond)
	r.Observe(ctx, "release", true, 5*time.Millisecond)
	r.Observe(ctx, "release", false, time.Millisecond)
	r.Observe(ctx, "", true, time.Millisecond)

	expected := `
# HELP test_operations_total Operaciones del inventario por resultado.
# TYPE test_operations_total counter
test_operations_total{operation="release",result="error"} 1
test_operations_total{operation="release",result="success"} 2
`
	err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "test_operations_total")
	require.NoError(t, err)
}

func TestRecorder_ObserveRelease(t *testing.T) {
	r := metrics.NewRecorder("test")
	ctx := context.Background()

	r.ObserveRelease(ctx, "Plasma", 2, 500)
	r.ObserveRelease(ctx, "Plasma", 1, 250)

	expected := `
# HELP test_released_volume_ml_total Volumen liberado en mililitros.
# TYPE test_released_volume_ml_total counter
test_released_volume_ml_total{category="Plasma"} 750
`
	err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "test_released_volume_ml_total")
	require.NoError(t, err)
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.NewRecorder("")
	r.Observe(context.Background(), "stock.add", true, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bloodbank_operations_total{operation="stock.add",result="success"} 1`)
}
