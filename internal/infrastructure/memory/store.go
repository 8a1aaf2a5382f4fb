// Package memory provee un almacén transaccional en memoria que implementa los mismos puertos que
// el adaptador PostgreSQL. Cada transacción trabaja sobre una copia del estado y solo la publica
// si fn termina sin error, así que un lote fallido no deja rastros. Las transacciones se serializan
// con un mutex, lo que equivale a aislamiento serializable.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	balances      map[entity.BalanceKey]entity.StockBalance
	ledger        []entity.LedgerEntry
	transfers     map[string]*entity.TransferRequest
	transferOrder []string
	notifications map[string]*entity.StockRequestNotification
	notifOrder    []string
	seq           int64
}

func newState() *state {
	return &state{
		balances:      map[entity.BalanceKey]entity.StockBalance{},
		transfers:     map[string]*entity.TransferRequest{},
		notifications: map[string]*entity.StockRequestNotification{},
	}
}

func (st *state) clone() *state {
	c := &state{
		balances:      make(map[entity.BalanceKey]entity.StockBalance, len(st.balances)),
		ledger:        make([]entity.LedgerEntry, len(st.ledger)),
		transfers:     make(map[string]*entity.TransferRequest, len(st.transfers)),
		transferOrder: append([]string(nil), st.transferOrder...),
		notifications: make(map[string]*entity.StockRequestNotification, len(st.notifications)),
		notifOrder:    append([]string(nil), st.notifOrder...),
		seq:           st.seq,
	}
	for k, v := range st.balances {
		c.balances[k] = v
	}
	copy(c.ledger, st.ledger)
	for k, v := range st.transfers {
		c.transfers[k] = copyTransfer(v)
	}
	for k, v := range st.notifications {
		c.notifications[k] = copyNotification(v)
	}
	return c
}

func (st *state) tx() ports.Tx {
	return ports.Tx{
		Stocks:        &stockRepo{st: st},
		Ledger:        &ledgerRepo{st: st},
		Transfers:     &transferRepo{st: st},
		Notifications: &notificationRepo{st: st},
	}
}

// Store es el almacén en memoria.
type Store struct {
	mu sync.Mutex
	st *state

	master *masterData
}

// Option configura el almacén.
type Option func(*Store)

// WithOpenMasterData hace que cualquier ubicación o variante con identificador válido exista.
// Pensado para desarrollo local sin maestro de datos.
func WithOpenMasterData() Option {
	return func(s *Store) { s.master.open = true }
}

// New crea un almacén vacío.
func New(opts ...Option) *Store {
	s := &Store{st: newState(), master: newMasterData()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ejecuta fn sobre una copia del estado; si fn no falla, la copia pasa a ser el estado.
func (s *Store) Run(ctx context.Context, fn func(tx ports.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(work.tx()); err != nil {
		return err
	}
	s.st = work
	return nil
}

// read ejecuta fn con el estado confirmado bajo el mutex, sin copiar.
func (s *Store) read(fn func(tx ports.Tx)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st.tx())
}

// Repositories devuelve los repositorios de lectura/escritura fuera de transacción.
// Cada escritura es su propia transacción.
func (s *Store) Repositories() ports.Tx {
	return ports.Tx{
		Stocks:        stocksView{s: s},
		Ledger:        ledgerView{s: s},
		Transfers:     transfersView{s: s},
		Notifications: notificationsView{s: s},
	}
}

// Health siempre responde "up".
func (s *Store) Health(context.Context) map[string]string {
	return map[string]string{"status": "up", "store": "memory"}
}

func copyTransfer(r *entity.TransferRequest) *entity.TransferRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.ToLocation != nil {
		to := *r.ToLocation
		c.ToLocation = &to
	}
	c.Items = make([]entity.TransferItem, len(r.Items))
	for i, it := range r.Items {
		c.Items[i] = copyItem(it)
	}
	return &c
}

func copyItem(it entity.TransferItem) entity.TransferItem {
	c := it
	if it.ShippedQty != nil {
		v := *it.ShippedQty
		c.ShippedQty = &v
	}
	if it.ReceivedQty != nil {
		v := *it.ReceivedQty
		c.ReceivedQty = &v
	}
	return c
}

func copyNotification(n *entity.StockRequestNotification) *entity.StockRequestNotification {
	if n == nil {
		return nil
	}
	c := *n
	c.Targets = append([]entity.StockTarget(nil), n.Targets...)
	if n.ResolvedAt != nil {
		at := *n.ResolvedAt
		c.ResolvedAt = &at
	}
	if n.TransferRequestID != nil {
		id := *n.TransferRequestID
		c.TransferRequestID = &id
	}
	return &c
}
