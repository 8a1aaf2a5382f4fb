package transfer_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/internal/application/transfer"
	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/internal/infrastructure/memory"
)

const (
	actor   = "u-1"
	variant = int64(7)
)

type fakePublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *fakePublisher) Publish(_ context.Context, eventType, _ string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
	return nil
}

type fixture struct {
	store  *memory.Store
	ledger *ledger.Service
	svc    *transfer.Service
	events *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	for _, code := range []string{"A", "B", "HQ"} {
		store.AddLocation(entity.Location{Code: code, Name: code, Kind: entity.LocationKindStore, Active: true})
	}
	store.AddVariant(entity.Variant{ID: variant, ProductCode: "JEAN-01", Color: "Azul", Size: "32"})
	store.AddVariant(entity.Variant{ID: 8, ProductCode: "JEAN-01", Color: "Azul", Size: "34"})

	repos := store.Repositories()
	pub := &fakePublisher{}
	l := ledger.NewService(store, repos.Stocks, repos.Ledger, ledger.WithEvents(pub))
	clock := func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	svc := transfer.NewService(store, l, repos.Transfers, store.Locations(), store.Variants(),
		transfer.WithEvents(pub), transfer.WithClock(clock))
	return &fixture{store: store, ledger: l, svc: svc, events: pub}
}

func (f *fixture) stock(t *testing.T, loc string, qty int64) {
	t.Helper()
	_, err := f.ledger.ApplyDelta(context.Background(), ledger.DeltaInput{
		LocationCode: loc, VariantID: variant, Delta: qty, TxType: entity.TxRestock, Actor: actor,
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, loc string) int64 {
	t.Helper()
	qty, err := f.ledger.GetBalance(context.Background(), loc, variant)
	require.NoError(t, err)
	return qty
}

func (f *fixture) create(t *testing.T, qty int64) *entity.TransferRequest {
	t.Helper()
	req, err := f.svc.Create(context.Background(), transfer.CreateInput{
		Type: entity.RequestTransfer, FromLocation: "A", ToLocation: "B",
		Items: []transfer.ItemInput{{VariantID: variant, Qty: qty}}, Actor: actor,
	})
	require.NoError(t, err)
	return req
}

func qtys(req *entity.TransferRequest, q int64) []transfer.QtyInput {
	out := make([]transfer.QtyInput, len(req.Items))
	for i, it := range req.Items {
		out[i] = transfer.QtyInput{ItemID: it.ID, Qty: q}
	}
	return out
}

// A tiene 10, B pide 4: se despachan 4 y llegan 3 (uno perdido en tránsito).
func TestFlujo_DespachoYRecepcionParcial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 10)

	req := f.create(t, 4)
	assert.Equal(t, entity.StatusDraft, req.Status)
	assert.Equal(t, "TRF20260315-0001", req.RequestNo)

	_, err := f.svc.Approve(ctx, req.ID, actor)
	require.NoError(t, err)

	shipped, err := f.svc.RecordShipment(ctx, req.ID, qtys(req, 4), actor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusShipped, shipped.Request.Status)
	assert.Empty(t, shipped.Warnings)
	assert.Equal(t, int64(6), f.balance(t, "A"))

	received, err := f.svc.RecordReceipt(ctx, req.ID, qtys(req, 3), actor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReceived, received.Request.Status)
	assert.Equal(t, int64(3), f.balance(t, "B"))
	assert.Equal(t, int64(9), f.balance(t, "A")+f.balance(t, "B"), "la pérdida en tránsito reduce el total en 1")

	item := received.Request.Items[0]
	require.NotNil(t, item.ShippedQty)
	require.NotNil(t, item.ReceivedQty)
	assert.Equal(t, int64(4), *item.ShippedQty)
	assert.Equal(t, int64(3), *item.ReceivedQty)

	repos := f.store.Repositories()
	shipment := entity.TxShipment
	aEntries, err := repos.Ledger.List(ctx, repository.LedgerFilter{LocationCode: "A", TxType: &shipment})
	require.NoError(t, err)
	require.Len(t, aEntries, 1)
	assert.Equal(t, int64(-4), aEntries[0].QtyChange)
	assert.Equal(t, req.RequestNo, aEntries[0].Memo)

	bEntries, err := repos.Ledger.List(ctx, repository.LedgerFilter{LocationCode: "B"})
	require.NoError(t, err)
	require.Len(t, bEntries, 1)
	assert.Equal(t, entity.TxRestock, bEntries[0].TxType)
	assert.Equal(t, int64(3), bEntries[0].QtyChange)

	stored, err := f.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReceived, stored.Status)
}

// Con recepción completa el total de la variante se conserva.
func TestFlujo_ConservaTotalConRecepcionCompleta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 10)
	f.stock(t, "B", 2)

	req := f.create(t, 5)
	_, err := f.svc.Approve(ctx, req.ID, actor)
	require.NoError(t, err)
	_, err = f.svc.RecordShipment(ctx, req.ID, qtys(req, 5), actor)
	require.NoError(t, err)
	_, err = f.svc.RecordReceipt(ctx, req.ID, qtys(req, 5), actor)
	require.NoError(t, err)

	assert.Equal(t, int64(5), f.balance(t, "A"))
	assert.Equal(t, int64(7), f.balance(t, "B"))
}

// Un segundo despacho se rechaza y no vuelve a descontar.
func TestRecordShipment_DobleDespachoRechazado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 10)
	req := f.create(t, 4)
	_, err := f.svc.Approve(ctx, req.ID, actor)
	require.NoError(t, err)
	_, err = f.svc.RecordShipment(ctx, req.ID, qtys(req, 4), actor)
	require.NoError(t, err)

	_, err = f.svc.RecordShipment(ctx, req.ID, qtys(req, 4), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(6), f.balance(t, "A"))
}

func TestRecordShipment_RequiereAprobacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 10)
	req := f.create(t, 4)

	_, err := f.svc.RecordShipment(ctx, req.ID, qtys(req, 4), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(10), f.balance(t, "A"))
}

// Despachar más de lo que hay en origen no falla: se recorta y se avisa.
func TestRecordShipment_RecorteGeneraAviso(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 2)
	req := f.create(t, 4)
	_, err := f.svc.Approve(ctx, req.ID, actor)
	require.NoError(t, err)

	res, err := f.svc.RecordShipment(ctx, req.ID, qtys(req, 4), actor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusShipped, res.Request.Status)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, int64(-4), res.Warnings[0].Requested)
	assert.Equal(t, int64(-2), res.Warnings[0].Applied)
	assert.Equal(t, int64(0), f.balance(t, "A"))
}

func TestRecordShipment_ValidaCantidades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 10)
	req := f.create(t, 4)
	_, err := f.svc.Approve(ctx, req.ID, actor)
	require.NoError(t, err)

	_, err = f.svc.RecordShipment(ctx, req.ID, qtys(req, 5), actor)
	require.ErrorIs(t, err, domain.ErrValidation)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, int64(5), *derr.Requested)
	assert.Equal(t, int64(4), *derr.Actual)

	_, err = f.svc.RecordShipment(ctx, req.ID, nil, actor)
	assert.ErrorIs(t, err, domain.ErrValidation, "debe cubrir todos los ítems")

	_, err = f.svc.RecordShipment(ctx, req.ID, []transfer.QtyInput{{ItemID: "otro", Qty: 1}}, actor)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := f.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, stored.Status)
	assert.Equal(t, int64(10), f.balance(t, "A"))
}

func TestRecordReceipt_NoSuperaLoDespachado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 10)
	req := f.create(t, 4)
	_, err := f.svc.Approve(ctx, req.ID, actor)
	require.NoError(t, err)
	_, err = f.svc.RecordShipment(ctx, req.ID, qtys(req, 2), actor)
	require.NoError(t, err)

	_, err = f.svc.RecordReceipt(ctx, req.ID, qtys(req, 3), actor)
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err := f.svc.RecordReceipt(ctx, req.ID, qtys(req, 0), actor)
	require.NoError(t, err, "recibir cero es válido: todo se perdió")
	assert.Equal(t, entity.StatusReceived, res.Request.Status)
	assert.Equal(t, int64(0), f.balance(t, "B"))

	_, err = f.svc.RecordReceipt(ctx, req.ID, qtys(req, 0), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// Devolución sin destino: se registra lo recibido pero no hay asiento.
func TestRecordReceipt_DevolucionSinDestino(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 5)
	req, err := f.svc.Create(ctx, transfer.CreateInput{
		Type: entity.RequestReturn, FromLocation: "A",
		Items: []transfer.ItemInput{{VariantID: variant, Qty: 2}}, Actor: actor, AutoApprove: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "RTN20260315-0001", req.RequestNo)
	assert.Equal(t, entity.StatusApproved, req.Status)

	_, err = f.svc.RecordShipment(ctx, req.ID, qtys(req, 2), actor)
	require.NoError(t, err)
	res, err := f.svc.RecordReceipt(ctx, req.ID, qtys(req, 2), actor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), *res.Request.Items[0].ReceivedQty)
	assert.Equal(t, int64(3), f.balance(t, "A"))
}

func TestRecordReceipt_DevolucionAcreditaComoReturn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 5)
	req, err := f.svc.Create(ctx, transfer.CreateInput{
		Type: entity.RequestReturn, FromLocation: "A", ToLocation: "HQ",
		Items: []transfer.ItemInput{{VariantID: variant, Qty: 2}}, Actor: actor, AutoApprove: true,
	})
	require.NoError(t, err)
	_, err = f.svc.RecordShipment(ctx, req.ID, qtys(req, 2), actor)
	require.NoError(t, err)
	_, err = f.svc.RecordReceipt(ctx, req.ID, qtys(req, 2), actor)
	require.NoError(t, err)

	entries, err := f.store.Repositories().Ledger.List(ctx, repository.LedgerFilter{LocationCode: "HQ"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.TxReturn, entries[0].TxType)
}

func TestCancel_AntesDelDespachoNoMueveStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 10)

	draft := f.create(t, 4)
	res, err := f.svc.Cancel(ctx, draft.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, res.Status)

	approved := f.create(t, 3)
	_, err = f.svc.Approve(ctx, approved.ID, actor)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, approved.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, int64(10), f.balance(t, "A"))
	assert.Equal(t, int64(0), f.balance(t, "B"))

	_, err = f.svc.Approve(ctx, draft.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "CANCELLED es terminal")
}

func TestCancel_DespuesDelDespachoRechazado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 10)
	req := f.create(t, 4)
	_, err := f.svc.Approve(ctx, req.ID, actor)
	require.NoError(t, err)
	_, err = f.svc.RecordShipment(ctx, req.ID, qtys(req, 4), actor)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, req.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(6), f.balance(t, "A"))
}

// Dos aprobaciones simultáneas: solo una gana.
func TestApprove_ConcurrenteUnSoloGanador(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.create(t, 4)

	const n = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Approve(ctx, req.ID, actor)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	require.Len(t, errs, n-1)
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
}

func TestCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := transfer.CreateInput{
		Type: entity.RequestTransfer, FromLocation: "A", ToLocation: "B",
		Items: []transfer.ItemInput{{VariantID: variant, Qty: 1}}, Actor: actor,
	}

	cases := []struct {
		name   string
		mutate func(in *transfer.CreateInput)
		kind   error
	}{
		{"cantidad cero", func(in *transfer.CreateInput) { in.Items = []transfer.ItemInput{{VariantID: variant}} }, domain.ErrValidation},
		{"origen igual a destino", func(in *transfer.CreateInput) { in.ToLocation = "A" }, domain.ErrValidation},
		{"sin ítems", func(in *transfer.CreateInput) { in.Items = nil }, domain.ErrValidation},
		{"variante repetida", func(in *transfer.CreateInput) {
			in.Items = []transfer.ItemInput{{VariantID: variant, Qty: 1}, {VariantID: variant, Qty: 2}}
		}, domain.ErrValidation},
		{"cantidad fuera de rango", func(in *transfer.CreateInput) {
			in.Items = []transfer.ItemInput{{VariantID: variant, Qty: math.MaxInt64}}
		}, domain.ErrValidation},
		{"tipo desconocido", func(in *transfer.CreateInput) { in.Type = "GIFT" }, domain.ErrValidation},
		{"traslado sin destino", func(in *transfer.CreateInput) { in.ToLocation = "" }, domain.ErrValidation},
		{"sin actor", func(in *transfer.CreateInput) { in.Actor = "" }, domain.ErrValidation},
		{"ubicación desconocida", func(in *transfer.CreateInput) { in.ToLocation = "X" }, domain.ErrNotFound},
		{"variante desconocida", func(in *transfer.CreateInput) { in.Items = []transfer.ItemInput{{VariantID: 404, Qty: 1}} }, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := f.svc.Create(ctx, in)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	list, err := f.svc.List(ctx, repository.TransferFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "ninguna creación inválida persiste")
}

func TestUpdateItems_SoloEnDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.create(t, 4)

	updated, err := f.svc.UpdateItems(ctx, req.ID, []transfer.ItemInput{{VariantID: variant, Qty: 2}, {VariantID: 8, Qty: 1}}, actor)
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)

	stored, err := f.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, int64(2), stored.Items[0].RequestQty)

	_, err = f.svc.Approve(ctx, req.ID, actor)
	require.NoError(t, err)
	_, err = f.svc.UpdateItems(ctx, req.ID, []transfer.ItemInput{{VariantID: variant, Qty: 9}}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestConsultas_PorNumeroYListado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.create(t, 1)
	second := f.create(t, 2)
	assert.Equal(t, "TRF20260315-0002", second.RequestNo)

	got, err := f.svc.GetByNo(ctx, first.RequestNo)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = f.svc.Get(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Approve(ctx, second.ID, actor)
	require.NoError(t, err)
	approved := entity.StatusApproved
	list, err := f.svc.List(ctx, repository.TransferFilter{Status: &approved})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	bad := entity.TransferStatus("LOST")
	_, err = f.svc.List(ctx, repository.TransferFilter{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEventos_PorTransicion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(t, "A", 10)
	req := f.create(t, 4)
	_, err := f.svc.Approve(ctx, req.ID, actor)
	require.NoError(t, err)
	_, err = f.svc.RecordShipment(ctx, req.ID, qtys(req, 4), actor)
	require.NoError(t, err)

	count := map[string]int{}
	for _, typ := range f.events.types {
		count[typ]++
	}
	assert.Equal(t, 3, count[ports.EventTransferStatusChanged], "creación, aprobación y despacho")
	assert.Equal(t, 2, count[ports.EventStockAdjusted], "carga inicial y débito del despacho")
}
