package http_test

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacenix/ledger-api/internal/application/dto"
	"github.com/almacenix/ledger-api/internal/application/ledger"
	"github.com/almacenix/ledger-api/internal/application/report"
	"github.com/almacenix/ledger-api/internal/domain/entity"
	"github.com/almacenix/ledger-api/internal/domain/repository"
	apihttp "github.com/almacenix/ledger-api/internal/interfaces/http"
	"github.com/almacenix/ledger-api/pkg/jwt"
)

const (
	testItemID     = "11111111-0000-0000-0000-000000000001"
	testLocationID = "22222222-0000-0000-0000-000000000001"
)

// Stubs mínimos sobre los puertos: solo los métodos que los handlers bajo
// prueba alcanzan; el resto entra en pánico si se llama.
type stubMovements struct {
	repository.StockMovementRepository
	created []*entity.StockMovement
}

func (s *stubMovements) Create(ctx context.Context, m *entity.StockMovement) error {
	s.created = append(s.created, m)
	return nil
}

type stubLevels struct {
	repository.StockLevelRepository
	qty map[string]decimal.Decimal
}

func (s *stubLevels) key(itemID, locationID string) string { return itemID + "|" + locationID }

func (s *stubLevels) ApplyDelta(ctx context.Context, tenantID, itemID, locationID string, delta decimal.Decimal, movementID string) (decimal.Decimal, error) {
	k := s.key(itemID, locationID)
	s.qty[k] = s.qty[k].Add(delta)
	return s.qty[k], nil
}

func (s *stubLevels) Get(ctx context.Context, tenantID, itemID, locationID string) (*entity.StockLevel, error) {
	q, ok := s.qty[s.key(itemID, locationID)]
	if !ok {
		return nil, nil
	}
	l := entity.NewStockLevel(tenantID, itemID, locationID)
	l.QuantityOnHand = q
	return l, nil
}

type stubTxRunner struct {
	movements *stubMovements
	levels    *stubLevels
}

func (r *stubTxRunner) Run(ctx context.Context, fn func(
	movements repository.StockMovementRepository,
	levels repository.StockLevelRepository,
) error) error {
	return fn(r.movements, r.levels)
}

// newLedgerApp monta el router completo sobre stubs; seed carga cantidades
// iniciales por par item|ubicación.
func newLedgerApp(seed map[string]int64) *fiber.App {
	levels := &stubLevels{qty: make(map[string]decimal.Decimal)}
	for k, q := range seed {
		levels.qty[k] = decimal.NewFromInt(q)
	}
	movements := &stubMovements{}
	uc := ledger.NewUseCase(&stubTxRunner{movements: movements, levels: levels}, movements, levels, nil, nil)

	app := fiber.New()
	apihttp.Router(app, apihttp.RouterDeps{
		LedgerUC:   uc,
		LowStockUC: report.NewLowStockUseCase(levels),
		JWTSecret:  testSecret,
	})
	return app
}

func authedRequest(t *testing.T, method, target, body string) *nethttp.Request {
	t.Helper()
	token, err := jwt.Generate(testSecret, testUserID, testTenantID, "ledger-api", 15)
	require.NoError(t, err)
	var req *nethttp.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRecordMovementHandler_TipoDesconocido_400(t *testing.T) {
	app := newLedgerApp(nil)
	body := `{"item_id":"` + testItemID + `","location_id":"` + testLocationID + `","movement_type":"teleport","quantity":"5","reference_type":"purchase_order"}`

	resp, err := app.Test(authedRequest(t, nethttp.MethodPost, "/api/ledger/movements", body))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
}

func TestRecordMovementHandler_SignoInvalido_400(t *testing.T) {
	app := newLedgerApp(nil)
	// outbound exige cantidad <= 0
	body := `{"item_id":"` + testItemID + `","location_id":"` + testLocationID + `","movement_type":"outbound","quantity":"5","reference_type":"sales_order"}`

	resp, err := app.Test(authedRequest(t, nethttp.MethodPost, "/api/ledger/movements", body))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
}

func TestRecordMovementHandler_StockNegativo_409(t *testing.T) {
	app := newLedgerApp(map[string]int64{testItemID + "|" + testLocationID: 10})
	body := `{"item_id":"` + testItemID + `","location_id":"` + testLocationID + `","movement_type":"outbound","quantity":"-50","reference_type":"sales_order"}`

	resp, err := app.Test(authedRequest(t, nethttp.MethodPost, "/api/ledger/movements", body))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NEGATIVE_STOCK", decodeError(t, resp).Code)
}

func TestRecordMovementHandler_Confirmado_201(t *testing.T) {
	app := newLedgerApp(nil)
	body := `{"item_id":"` + testItemID + `","location_id":"` + testLocationID + `","movement_type":"initial","quantity":"100","reference_type":"initial"}`

	resp, err := app.Test(authedRequest(t, nethttp.MethodPost, "/api/ledger/movements", body))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	defer resp.Body.Close()
	var out dto.StockMovementDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "initial", out.MovementType)
	assert.Equal(t, testItemID, out.ItemID)
}

func TestRecordMovementHandler_CuerpoInvalido_400(t *testing.T) {
	app := newLedgerApp(nil)
	resp, err := app.Test(authedRequest(t, nethttp.MethodPost, "/api/ledger/movements", "{no es json"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Code)
}

func TestGetLevelHandler_ParSinNivel_404(t *testing.T) {
	app := newLedgerApp(nil)
	target := "/api/ledger/items/" + testItemID + "/locations/" + testLocationID + "/level"

	resp, err := app.Test(authedRequest(t, nethttp.MethodGet, target, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestGetLevelHandler_NivelExistente_200(t *testing.T) {
	app := newLedgerApp(map[string]int64{testItemID + "|" + testLocationID: 42})
	target := "/api/ledger/items/" + testItemID + "/locations/" + testLocationID + "/level"

	resp, err := app.Test(authedRequest(t, nethttp.MethodGet, target, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var out dto.StockLevelDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.QuantityOnHand.Equal(decimal.NewFromInt(42)))
}

func TestLedgerRoutes_SinToken_401(t *testing.T) {
	app := newLedgerApp(nil)
	resp, err := app.Test(httptest.NewRequest(nethttp.MethodPost, "/api/ledger/movements", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
