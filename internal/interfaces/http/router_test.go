package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bloodbank-api/internal/application/dto"
	"github.com/jhoicas/bloodbank-api/internal/application/inventory"
	"github.com/jhoicas/bloodbank-api/internal/infrastructure/datastore"
	"github.com/jhoicas/bloodbank-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/bloodbank-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/bloodbank-api/pkg/jwt"
	"github.com/jhoicas/bloodbank-api/pkg/metrics"
)

// newAPI arma la API completa sobre una base SQLite temporal.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store, err := datastore.OpenSQLite(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	rec := metrics.NewRecorder("bloodbank_test")
	log := zerolog.Nop()
	stockUC := inventory.NewStockUseCase(store.Stock, store.TxRunner, rec, log)
	releaseUC := inventory.NewReleaseUseCase(store.TxRunner, store.Releases, rec, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockUC:       stockUC,
		ReleaseUC:     releaseUC,
		ReleaseSlipUC: inventory.NewReleaseSlipUseCase(releaseUC, pdf.NewMarotoReleaseSlipGenerator("Banco de Sangre Central")),
		JWTSecret:     testJWTSecret,
		ServiceName:   "bloodbank-api",
		Store:         store,
		Metrics:       rec.Handler(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, []byte, http.Header) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out, resp.Header
}

func createRBC(t *testing.T, app *fiber.App, serial string) dto.StockUnitResponse {
	t.Helper()
	status, body, _ := call(t, app, http.MethodPost, "/api/inventory/red-blood-cell/units", pkgjwt.RoleStaff, dto.CreateStockUnitRequest{
		SerialID:   serial,
		Type:       "O",
		RhFactor:   "+",
		Volume:     450,
		Collection: "2025-01-01",
		Expiration: "2025-02-12",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var out dto.StockUnitResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHealth(t *testing.T) {
	app := newAPI(t)

	status, body, _ := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestCreateYListar(t *testing.T) {
	app := newAPI(t)

	created := createRBC(t, app, "RBC-001")
	assert.Equal(t, "O+", created.CombinedType)
	assert.Equal(t, "Stored", created.Status)
	assert.Equal(t, "Red Blood Cell", created.Category)

	status, body, _ := call(t, app, http.MethodGet, "/api/inventory/RBC/units", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.StockUnitListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, created.ID, list.Items[0].ID)

	status, _, _ = call(t, app, http.MethodGet, "/api/inventory/red-blood-cell/units?status=Released", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreate_ErroresDeFrontera(t *testing.T) {
	app := newAPI(t)
	createRBC(t, app, "RBC-001")

	status, body, _ := call(t, app, http.MethodPost, "/api/inventory/platelet/units", pkgjwt.RoleStaff, dto.CreateStockUnitRequest{
		SerialID: "PLT-001", Type: "A", RhFactor: "+", Volume: 0, Collection: "2025-01-01", Expiration: "2025-01-06",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "VALIDATION")

	status, body, _ = call(t, app, http.MethodPost, "/api/inventory/red-blood-cell/units", pkgjwt.RoleStaff, dto.CreateStockUnitRequest{
		SerialID: "RBC-001", Type: "A", RhFactor: "-", Volume: 300, Collection: "2025-01-01", Expiration: "2025-02-01",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "CONFLICT")

	status, _, _ = call(t, app, http.MethodPost, "/api/inventory/whole-blood/units", pkgjwt.RoleStaff, dto.CreateStockUnitRequest{})
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/plasma/units", strings.NewReader("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleStaff))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoles(t *testing.T) {
	app := newAPI(t)

	status, _, _ := call(t, app, http.MethodPost, "/api/inventory/plasma/units", pkgjwt.RoleViewer, dto.CreateStockUnitRequest{})
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = call(t, app, http.MethodGet, "/api/inventory/plasma/units", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = call(t, app, http.MethodDelete, "/api/inventory/plasma/units", pkgjwt.RoleViewer, dto.DeleteStockUnitsRequest{IDs: []string{"x"}})
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = call(t, app, http.MethodPost, "/api/inventory/plasma/releases", pkgjwt.RoleViewer, dto.ReleaseRequest{SerialIDs: []string{"x"}})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestUpdateYDelete(t *testing.T) {
	app := newAPI(t)
	created := createRBC(t, app, "RBC-001")

	rh := "-"
	status, body, _ := call(t, app, http.MethodPut, "/api/inventory/red-blood-cell/units/"+created.ID, pkgjwt.RoleStaff, dto.UpdateStockUnitRequest{RhFactor: &rh})
	require.Equal(t, http.StatusOK, status, string(body))
	var updated dto.StockUnitResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "O-", updated.CombinedType)
	assert.NotNil(t, updated.ModifiedAt)

	status, _, _ = call(t, app, http.MethodPut, "/api/inventory/plasma/units/"+created.ID, pkgjwt.RoleStaff, dto.UpdateStockUnitRequest{RhFactor: &rh})
	assert.Equal(t, http.StatusNotFound, status)

	status, body, _ = call(t, app, http.MethodDelete, "/api/inventory/red-blood-cell/units", pkgjwt.RoleAdmin, dto.DeleteStockUnitsRequest{IDs: []string{created.ID, "otro"}})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deleted":1}`, string(body))
}

func TestBusquedas(t *testing.T) {
	app := newAPI(t)
	createRBC(t, app, "RBC-001")
	createRBC(t, app, "RBC-002")
	createRBC(t, app, "RBC-100")

	status, body, _ := call(t, app, http.MethodGet, "/api/inventory/red-blood-cell/units/serial/RBC", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, status)
	var lookup dto.SerialLookupResponse
	require.NoError(t, json.Unmarshal(body, &lookup))
	assert.Nil(t, lookup.Match)
	require.Len(t, lookup.Candidates, 3)
	assert.Equal(t, "RBC-001", lookup.Candidates[0].SerialID)

	status, body, _ = call(t, app, http.MethodGet, "/api/inventory/red-blood-cell/units/serial/RBC-002", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, status)
	lookup = dto.SerialLookupResponse{}
	require.NoError(t, json.Unmarshal(body, &lookup))
	require.NotNil(t, lookup.Match)
	assert.Equal(t, "RBC-002", lookup.Match.SerialID)

	status, _, _ = call(t, app, http.MethodGet, "/api/inventory/red-blood-cell/units/serial/ZZZ", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body, _ = call(t, app, http.MethodGet, "/api/inventory/red-blood-cell/units/search?q=100", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.StockUnitListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Total)
}

func TestReleaseArchivoYComprobante(t *testing.T) {
	app := newAPI(t)
	created := createRBC(t, app, "RBC-001")

	status, body, _ := call(t, app, http.MethodPost, "/api/inventory/red-blood-cell/releases", pkgjwt.RoleStaff, dto.ReleaseRequest{
		SerialIDs:           []string{"RBC-001", "RBC-404"},
		ReceivingFacility:   "City Hospital",
		AuthorizedRecipient: "Dra. Pérez",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var released dto.ReleaseResponse
	require.NoError(t, json.Unmarshal(body, &released))
	assert.Equal(t, 1, released.ReleasedCount)
	assert.Equal(t, []string{"RBC-404"}, released.Unmatched)

	status, body, _ = call(t, app, http.MethodGet, "/api/inventory/red-blood-cell/releases", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, status)
	var archive dto.ReleaseRecordListResponse
	require.NoError(t, json.Unmarshal(body, &archive))
	require.Equal(t, 1, archive.Total)
	assert.Equal(t, created.ID, archive.Items[0].OriginalID)
	assert.Equal(t, created.CreatedAt, archive.Items[0].CreatedAt)
	assert.Equal(t, "City Hospital", archive.Items[0].ReceivingFacility)
	assert.Equal(t, testUsername, archive.Items[0].ReleasedBy)

	status, body, _ = call(t, app, http.MethodGet, "/api/inventory/releases/"+released.BatchID, pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, status)
	var batch dto.ReleaseRecordListResponse
	require.NoError(t, json.Unmarshal(body, &batch))
	assert.Equal(t, 1, batch.Total)

	status, body, headers := call(t, app, http.MethodGet, "/api/inventory/releases/"+released.BatchID+"/slip", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/pdf", headers.Get("Content-Type"))
	assert.Contains(t, headers.Get("Content-Disposition"), "liberacion-"+released.BatchID+".pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	status, _, _ = call(t, app, http.MethodGet, "/api/inventory/red-blood-cell/units", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, status)

	// Segundo intento sobre el mismo serial: ya no está en stock.
	status, body, _ = call(t, app, http.MethodPost, "/api/inventory/red-blood-cell/releases", pkgjwt.RoleStaff, dto.ReleaseRequest{
		SerialIDs: []string{"RBC-001"},
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "NOT_FOUND")

	status, _, _ = call(t, app, http.MethodGet, "/api/inventory/releases/no-existe/slip", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetricsExpuestas(t *testing.T) {
	app := newAPI(t)
	createRBC(t, app, "RBC-001")

	status, body, _ := call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "bloodbank_test_operations_total")
}
