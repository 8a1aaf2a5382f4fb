package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

var (
	_ repository.StockBalanceRepository = (*stockRepo)(nil)
	_ repository.LedgerRepository       = (*ledgerRepo)(nil)
	_ repository.TransferRepository     = (*transferRepo)(nil)
	_ repository.NotificationRepository = (*notificationRepo)(nil)
)

// ─── Saldos ────────────────────────────────────────────────────────────────────

type stockRepo struct{ st *state }

func (r *stockRepo) Get(_ context.Context, location string, variantID int64) (*entity.StockBalance, error) {
	key := entity.BalanceKey{LocationCode: location, VariantID: variantID}
	if b, ok := r.st.balances[key]; ok {
		return &b, nil
	}
	return &entity.StockBalance{LocationCode: location, VariantID: variantID}, nil
}

// GetForUpdate: el mutex del Store ya serializa la transacción completa.
func (r *stockRepo) GetForUpdate(ctx context.Context, location string, variantID int64) (*entity.StockBalance, error) {
	return r.Get(ctx, location, variantID)
}

func (r *stockRepo) Upsert(_ context.Context, b *entity.StockBalance) error {
	if b.Qty < 0 {
		return domain.ValidationOn("stock_balance", b.LocationCode, "qty", "no puede ser negativo")
	}
	r.st.balances[entity.BalanceKey{LocationCode: b.LocationCode, VariantID: b.VariantID}] = *b
	return nil
}

func (r *stockRepo) ListByVariant(_ context.Context, variantID int64) ([]*entity.StockBalance, error) {
	var list []*entity.StockBalance
	for k, b := range r.st.balances {
		if k.VariantID == variantID {
			b := b
			list = append(list, &b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LocationCode < list[j].LocationCode })
	return list, nil
}

func (r *stockRepo) ListByLocation(_ context.Context, location string, limit, offset int) ([]*entity.StockBalance, error) {
	var list []*entity.StockBalance
	for k, b := range r.st.balances {
		if k.LocationCode == location {
			b := b
			list = append(list, &b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].VariantID < list[j].VariantID })
	return page(list, limit, offset), nil
}

// ─── Libro ─────────────────────────────────────────────────────────────────────

type ledgerRepo struct{ st *state }

func (r *ledgerRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	r.st.ledger = append(r.st.ledger, *e)
	return nil
}

func (r *ledgerRepo) List(_ context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	for i := len(r.st.ledger) - 1; i >= 0; i-- {
		e := r.st.ledger[i]
		if f.LocationCode != "" && e.LocationCode != f.LocationCode {
			continue
		}
		if f.VariantID != nil && e.VariantID != *f.VariantID {
			continue
		}
		if f.TxType != nil && e.TxType != *f.TxType {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		list = append(list, &e)
	}
	return page(list, f.Limit, f.Offset), nil
}

func (r *ledgerRepo) ListForReplay(_ context.Context, location string, variantID int64) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	for _, e := range r.st.ledger {
		if e.LocationCode == location && e.VariantID == variantID {
			e := e
			list = append(list, &e)
		}
	}
	return list, nil
}

// ─── Solicitudes de traslado ───────────────────────────────────────────────────

type transferRepo struct{ st *state }

func (r *transferRepo) Create(_ context.Context, req *entity.TransferRequest) error {
	if _, ok := r.st.transfers[req.ID]; ok {
		return domain.Duplicate("transfer_request", req.ID)
	}
	for _, other := range r.st.transfers {
		if other.RequestNo == req.RequestNo {
			return domain.Duplicate("transfer_request", req.RequestNo)
		}
	}
	r.st.transfers[req.ID] = copyTransfer(req)
	r.st.transferOrder = append(r.st.transferOrder, req.ID)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.TransferRequest, error) {
	return copyTransfer(r.st.transfers[id]), nil
}

func (r *transferRepo) GetByRequestNo(_ context.Context, requestNo string) (*entity.TransferRequest, error) {
	for _, req := range r.st.transfers {
		if req.RequestNo == requestNo {
			return copyTransfer(req), nil
		}
	}
	return nil, nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) UpdateStatus(_ context.Context, id string, from, to entity.TransferStatus, at time.Time) error {
	req, ok := r.st.transfers[id]
	if !ok || req.Status != from {
		return domain.Conflict("transfer_request", id)
	}
	req.Status = to
	req.UpdatedAt = at
	return nil
}

func (r *transferRepo) UpdateQuantities(_ context.Context, items []entity.TransferItem) error {
	for _, it := range items {
		req, ok := r.st.transfers[it.RequestID]
		if !ok {
			return domain.NotFound("transfer_request", it.RequestID)
		}
		stored, ok := req.Item(it.ID)
		if !ok {
			return domain.NotFound("transfer_item", it.ID)
		}
		c := copyItem(it)
		stored.ShippedQty = c.ShippedQty
		stored.ReceivedQty = c.ReceivedQty
	}
	return nil
}

func (r *transferRepo) ReplaceItems(_ context.Context, requestID string, items []entity.TransferItem) error {
	req, ok := r.st.transfers[requestID]
	if !ok {
		return domain.NotFound("transfer_request", requestID)
	}
	req.Items = make([]entity.TransferItem, len(items))
	for i, it := range items {
		req.Items[i] = copyItem(it)
	}
	return nil
}

func (r *transferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.TransferRequest, error) {
	var list []*entity.TransferRequest
	for i := len(r.st.transferOrder) - 1; i >= 0; i-- {
		req := r.st.transfers[r.st.transferOrder[i]]
		if f.Status != nil && req.Status != *f.Status {
			continue
		}
		if f.Type != nil && req.Type != *f.Type {
			continue
		}
		if f.LocationCode != "" && req.FromLocation != f.LocationCode && req.Destination() != f.LocationCode {
			continue
		}
		list = append(list, copyTransfer(req))
	}
	return page(list, f.Limit, f.Offset), nil
}

func (r *transferRepo) NextSequence(context.Context) (int64, error) {
	r.st.seq++
	return r.st.seq, nil
}

// ─── Alertas de stock ──────────────────────────────────────────────────────────

type notificationRepo struct{ st *state }

func (r *notificationRepo) Create(_ context.Context, n *entity.StockRequestNotification) error {
	if n.Status == entity.NotificationPending {
		for _, other := range r.st.notifications {
			if other.Status == entity.NotificationPending && other.FromLocation == n.FromLocation && other.VariantID == n.VariantID {
				return domain.Duplicate("stock_request", other.ID)
			}
		}
	}
	r.st.notifications[n.ID] = copyNotification(n)
	r.st.notifOrder = append(r.st.notifOrder, n.ID)
	return nil
}

func (r *notificationRepo) GetByID(_ context.Context, id string) (*entity.StockRequestNotification, error) {
	return copyNotification(r.st.notifications[id]), nil
}

func (r *notificationRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRequestNotification, error) {
	return r.GetByID(ctx, id)
}

func (r *notificationRepo) FindPending(_ context.Context, location string, variantID int64) (*entity.StockRequestNotification, error) {
	for _, n := range r.st.notifications {
		if n.Status == entity.NotificationPending && n.FromLocation == location && n.VariantID == variantID {
			return copyNotification(n), nil
		}
	}
	return nil, nil
}

func (r *notificationRepo) MarkResolved(_ context.Context, id, actor string, transferID *string, at time.Time) error {
	n, ok := r.st.notifications[id]
	if !ok || n.Status != entity.NotificationPending {
		return domain.Conflict("stock_request", id)
	}
	n.Status = entity.NotificationResolved
	n.ResolvedAt = &at
	n.ResolvedBy = actor
	if transferID != nil {
		tid := *transferID
		n.TransferRequestID = &tid
	}
	return nil
}

func (r *notificationRepo) List(_ context.Context, f repository.NotificationFilter) ([]*entity.StockRequestNotification, error) {
	var list []*entity.StockRequestNotification
	for i := len(r.st.notifOrder) - 1; i >= 0; i-- {
		n := r.st.notifications[r.st.notifOrder[i]]
		if f.Status != nil && n.Status != *f.Status {
			continue
		}
		if f.LocationCode != "" && n.FromLocation != f.LocationCode && !n.HasTarget(f.LocationCode) {
			continue
		}
		list = append(list, copyNotification(n))
	}
	return page(list, f.Limit, f.Offset), nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
