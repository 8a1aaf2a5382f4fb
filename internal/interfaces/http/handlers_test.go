package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-moda/internal/application/adjustment"
	"github.com/jhoicas/inventario-moda/internal/application/dto"
	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/application/stockrequest"
	"github.com/jhoicas/inventario-moda/internal/application/transfer"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-moda/internal/interfaces/http"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

type api struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newAPI(t *testing.T, role string) *api {
	t.Helper()
	store := memory.New()
	for _, code := range []string{"HQ", "S1", "S2"} {
		store.AddLocation(entity.Location{Code: code, Name: code, Kind: entity.LocationKindStore, Active: true})
	}
	store.AddVariant(entity.Variant{ID: 10, ProductCode: "POLO-1", Color: "Blanco", Size: "L"})

	log := logger.Nop()
	repos := store.Repositories()
	l := ledger.NewService(store, repos.Stocks, repos.Ledger, ledger.WithLogger(log))
	adj := adjustment.NewService(store, l, store.Locations(), store.Variants(), "es")
	tr := transfer.NewService(store, l, repos.Transfers, store.Locations(), store.Variants(), transfer.WithLogger(log))
	sr := stockrequest.NewService(store, l, tr, repos.Notifications, store.Locations(), store.Variants())

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:        l,
		Adjustments:   adj,
		Transfers:     tr,
		StockRequests: sr,
		Health:        map[string]apphttp.HealthFunc{"store": store.Health},
		JWTSecret:     testJWTSecret,
		Logger:        log,
	})
	return &api{t: t, app: app, token: tokenFor(t, "S1", role)}
}

func (a *api) do(method, path string, body any, out any) int {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", a.token)
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHTTP_AjusteRecortadoDevuelveWarning(t *testing.T) {
	a := newAPI(t, "store")

	var created dto.DeltaResponse
	status := a.do(http.MethodPost, "/api/stock/restocks", dto.AdjustmentRequest{LocationCode: "S1", VariantID: 10, Qty: 10}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(10), created.QtyAfter)

	var res dto.DeltaResponse
	status = a.do(http.MethodPost, "/api/stock/adjustments", dto.AdjustmentRequest{LocationCode: "S1", VariantID: 10, Qty: -50, Memo: "stocktake"}, &res)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, res.Clamped)
	assert.Equal(t, int64(0), res.QtyAfter)
	require.NotNil(t, res.Entry)
	assert.Equal(t, int64(-10), res.Entry.QtyChange)
	assert.Equal(t, testUserID, res.Entry.Actor)
	require.Len(t, res.Warnings, 1)

	var bal dto.BalanceResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/stock/balances/S1/10", nil, &bal))
	assert.Equal(t, int64(0), bal.Qty)

	var hist dto.LedgerListResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/stock/ledger?location=S1&variant=10", nil, &hist))
	require.Len(t, hist.Items, 2)
	assert.Equal(t, "ADJUST", hist.Items[0].TxType)

	var rec ledger.Reconciliation
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/stock/ledger/verify/S1/10", nil, &rec))
	assert.True(t, rec.Consistent)
}

func TestHTTP_ErroresMapeados(t *testing.T) {
	a := newAPI(t, "store")

	var e dto.ErrorResponse
	status := a.do(http.MethodPost, "/api/stock/sales", dto.AdjustmentRequest{LocationCode: "S1", VariantID: 10}, &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Details, "qty")

	e = dto.ErrorResponse{}
	status = a.do(http.MethodPost, "/api/stock/restocks", dto.AdjustmentRequest{LocationCode: "S1", VariantID: 10, Qty: math.MaxInt64}, &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Details, "qty")

	e = dto.ErrorResponse{}
	status = a.do(http.MethodPost, "/api/stock/restocks", dto.AdjustmentRequest{LocationCode: "NOPE", VariantID: 10, Qty: 1}, &e)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", e.Code)

	e = dto.ErrorResponse{}
	status = a.do(http.MethodGet, "/api/stock/ledger?tx_type=GIFT", nil, &e)
	assert.Equal(t, http.StatusBadRequest, status)

	e = dto.ErrorResponse{}
	status = a.do(http.MethodGet, "/api/transfers/no-existe", nil, &e)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHTTP_FlujoDeTraslado(t *testing.T) {
	a := newAPI(t, "store")
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/stock/restocks", dto.AdjustmentRequest{LocationCode: "S1", VariantID: 10, Qty: 10}, nil))

	var tr dto.TransferResponse
	status := a.do(http.MethodPost, "/api/transfers", dto.CreateTransferRequest{
		RequestType: "TRANSFER", FromLocation: "S1", ToLocation: "S2",
		Items: []dto.TransferItemRequest{{VariantID: 10, Qty: 4}},
	}, &tr)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "DRAFT", tr.Status, "una tienda crea en DRAFT")
	require.Len(t, tr.Items, 1)
	itemID := tr.Items[0].ID

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/transfers/"+tr.ID+"/approve", nil, &tr))
	assert.Equal(t, "APPROVED", tr.Status)

	qty := func(q int64) dto.TransferQtyRequest {
		return dto.TransferQtyRequest{Items: []dto.ItemQtyRequest{{ItemID: itemID, Qty: q}}}
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/transfers/"+tr.ID+"/shipment", qty(4), &tr))
	assert.Equal(t, "SHIPPED", tr.Status)

	var e dto.ErrorResponse
	status = a.do(http.MethodPost, "/api/transfers/"+tr.ID+"/shipment", qty(4), &e)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE_TRANSITION", e.Code)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/transfers/"+tr.ID+"/receipt", qty(3), &tr))
	assert.Equal(t, "RECEIVED", tr.Status)
	require.NotNil(t, tr.Items[0].ReceivedQty)
	assert.Equal(t, int64(3), *tr.Items[0].ReceivedQty)

	var byNo dto.TransferResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/transfers/no/"+tr.RequestNo, nil, &byNo))
	assert.Equal(t, tr.ID, byNo.ID)

	var list dto.TransferListResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/transfers?status=RECEIVED&location=S2", nil, &list))
	assert.Len(t, list.Items, 1)

	var balances dto.BalanceListResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/stock/balances?variant=10", nil, &balances))
	got := map[string]int64{}
	for _, b := range balances.Items {
		got[b.LocationCode] = b.Qty
	}
	assert.Equal(t, map[string]int64{"S1": 6, "S2": 3}, got)
}

func TestHTTP_GerenciaCreaAprobada(t *testing.T) {
	a := newAPI(t, "manager")
	var tr dto.TransferResponse
	status := a.do(http.MethodPost, "/api/transfers", dto.CreateTransferRequest{
		RequestType: "SHIPMENT", FromLocation: "HQ", ToLocation: "S1",
		Items: []dto.TransferItemRequest{{VariantID: 10, Qty: 2}},
	}, &tr)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "APPROVED", tr.Status)
	assert.Regexp(t, `^SHP\d{8}-0001$`, tr.RequestNo)

	var cancelled dto.TransferResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/transfers/"+tr.ID+"/cancel", nil, &cancelled))
	assert.Equal(t, "CANCELLED", cancelled.Status)
}

func TestHTTP_PedidoDeStock(t *testing.T) {
	a := newAPI(t, "store")
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/stock/restocks", dto.AdjustmentRequest{LocationCode: "S2", VariantID: 10, Qty: 5}, nil))

	var n dto.StockRequestResponse
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/stock-requests", dto.CreateStockRequestRequest{VariantID: 10}, &n))
	assert.Equal(t, "S1", n.FromLocation, "sin from_location se usa la ubicación del token")
	assert.Equal(t, []entity.StockTarget{{LocationCode: "S2", Qty: 5}}, n.Targets)

	var again dto.StockRequestResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/stock-requests", dto.CreateStockRequestRequest{VariantID: 10}, &again))
	assert.True(t, again.Coalesced)
	assert.Equal(t, n.ID, again.ID)

	var processed dto.ProcessStockRequestResponse
	status := a.do(http.MethodPost, fmt.Sprintf("/api/stock-requests/%s/process", n.ID), dto.ProcessStockRequestRequest{ResolverLocation: "S2", Qty: 2}, &processed)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "RESOLVED", processed.Notification.Status)
	assert.Equal(t, "DRAFT", processed.Transfer.Status)
	assert.Equal(t, "S2", processed.Transfer.FromLocation)

	var e dto.ErrorResponse
	status = a.do(http.MethodPost, fmt.Sprintf("/api/stock-requests/%s/resolve", n.ID), nil, &e)
	assert.Equal(t, http.StatusConflict, status)
}

func TestHTTP_Health(t *testing.T) {
	a := newAPI(t, "store")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
