package memory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

// Vistas fuera de transacción: las lecturas toman el estado confirmado y cada escritura
// corre en su propio Run.

type stocksView struct{ s *Store }

func (v stocksView) Get(ctx context.Context, location string, variantID int64) (b *entity.StockBalance, err error) {
	v.s.read(func(tx ports.Tx) { b, err = tx.Stocks.Get(ctx, location, variantID) })
	return
}

func (v stocksView) GetForUpdate(ctx context.Context, location string, variantID int64) (*entity.StockBalance, error) {
	return v.Get(ctx, location, variantID)
}

func (v stocksView) Upsert(ctx context.Context, b *entity.StockBalance) error {
	return v.s.Run(ctx, func(tx ports.Tx) error { return tx.Stocks.Upsert(ctx, b) })
}

func (v stocksView) ListByVariant(ctx context.Context, variantID int64) (list []*entity.StockBalance, err error) {
	v.s.read(func(tx ports.Tx) { list, err = tx.Stocks.ListByVariant(ctx, variantID) })
	return
}

func (v stocksView) ListByLocation(ctx context.Context, location string, limit, offset int) (list []*entity.StockBalance, err error) {
	v.s.read(func(tx ports.Tx) { list, err = tx.Stocks.ListByLocation(ctx, location, limit, offset) })
	return
}

type ledgerView struct{ s *Store }

func (v ledgerView) Create(ctx context.Context, e *entity.LedgerEntry) error {
	return v.s.Run(ctx, func(tx ports.Tx) error { return tx.Ledger.Create(ctx, e) })
}

func (v ledgerView) List(ctx context.Context, f repository.LedgerFilter) (list []*entity.LedgerEntry, err error) {
	v.s.read(func(tx ports.Tx) { list, err = tx.Ledger.List(ctx, f) })
	return
}

func (v ledgerView) ListForReplay(ctx context.Context, location string, variantID int64) (list []*entity.LedgerEntry, err error) {
	v.s.read(func(tx ports.Tx) { list, err = tx.Ledger.ListForReplay(ctx, location, variantID) })
	return
}

type transfersView struct{ s *Store }

func (v transfersView) Create(ctx context.Context, req *entity.TransferRequest) error {
	return v.s.Run(ctx, func(tx ports.Tx) error { return tx.Transfers.Create(ctx, req) })
}

func (v transfersView) GetByID(ctx context.Context, id string) (req *entity.TransferRequest, err error) {
	v.s.read(func(tx ports.Tx) { req, err = tx.Transfers.GetByID(ctx, id) })
	return
}

func (v transfersView) GetByRequestNo(ctx context.Context, no string) (req *entity.TransferRequest, err error) {
	v.s.read(func(tx ports.Tx) { req, err = tx.Transfers.GetByRequestNo(ctx, no) })
	return
}

func (v transfersView) GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return v.GetByID(ctx, id)
}

func (v transfersView) UpdateStatus(ctx context.Context, id string, from, to entity.TransferStatus, at time.Time) error {
	return v.s.Run(ctx, func(tx ports.Tx) error { return tx.Transfers.UpdateStatus(ctx, id, from, to, at) })
}

func (v transfersView) UpdateQuantities(ctx context.Context, items []entity.TransferItem) error {
	return v.s.Run(ctx, func(tx ports.Tx) error { return tx.Transfers.UpdateQuantities(ctx, items) })
}

func (v transfersView) ReplaceItems(ctx context.Context, requestID string, items []entity.TransferItem) error {
	return v.s.Run(ctx, func(tx ports.Tx) error { return tx.Transfers.ReplaceItems(ctx, requestID, items) })
}

func (v transfersView) List(ctx context.Context, f repository.TransferFilter) (list []*entity.TransferRequest, err error) {
	v.s.read(func(tx ports.Tx) { list, err = tx.Transfers.List(ctx, f) })
	return
}

func (v transfersView) NextSequence(ctx context.Context) (seq int64, err error) {
	err = v.s.Run(ctx, func(tx ports.Tx) error {
		seq, err = tx.Transfers.NextSequence(ctx)
		return err
	})
	return
}

type notificationsView struct{ s *Store }

func (v notificationsView) Create(ctx context.Context, n *entity.StockRequestNotification) error {
	return v.s.Run(ctx, func(tx ports.Tx) error { return tx.Notifications.Create(ctx, n) })
}

func (v notificationsView) GetByID(ctx context.Context, id string) (n *entity.StockRequestNotification, err error) {
	v.s.read(func(tx ports.Tx) { n, err = tx.Notifications.GetByID(ctx, id) })
	return
}

func (v notificationsView) GetForUpdate(ctx context.Context, id string) (*entity.StockRequestNotification, error) {
	return v.GetByID(ctx, id)
}

func (v notificationsView) FindPending(ctx context.Context, location string, variantID int64) (n *entity.StockRequestNotification, err error) {
	v.s.read(func(tx ports.Tx) { n, err = tx.Notifications.FindPending(ctx, location, variantID) })
	return
}

func (v notificationsView) MarkResolved(ctx context.Context, id, actor string, transferID *string, at time.Time) error {
	return v.s.Run(ctx, func(tx ports.Tx) error { return tx.Notifications.MarkResolved(ctx, id, actor, transferID, at) })
}

func (v notificationsView) List(ctx context.Context, f repository.NotificationFilter) (list []*entity.StockRequestNotification, err error) {
	v.s.read(func(tx ports.Tx) { list, err = tx.Notifications.List(ctx, f) })
	return
}
