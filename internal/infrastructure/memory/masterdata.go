package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

var (
	_ repository.LocationRepository = (*locationRepo)(nil)
	_ repository.VariantRepository  = (*variantRepo)(nil)
)

// masterData guarda ubicaciones y variantes con su propio candado: se consultan antes de abrir
// una transacción y nunca la bloquean.
type masterData struct {
	mu        sync.RWMutex
	open      bool
	locations map[string]entity.Location
	variants  map[int64]entity.Variant
}

func newMasterData() *masterData {
	return &masterData{
		locations: map[string]entity.Location{},
		variants:  map[int64]entity.Variant{},
	}
}

// AddLocation registra (o reemplaza) una ubicación.
func (s *Store) AddLocation(l entity.Location) {
	s.master.mu.Lock()
	defer s.master.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	s.master.locations[l.Code] = l
}

// AddVariant registra (o reemplaza) una variante.
func (s *Store) AddVariant(v entity.Variant) {
	s.master.mu.Lock()
	defer s.master.mu.Unlock()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	s.master.variants[v.ID] = v
}

// Locations devuelve el repositorio de ubicaciones.
func (s *Store) Locations() repository.LocationRepository { return &locationRepo{m: s.master} }

// Variants devuelve el repositorio de variantes.
func (s *Store) Variants() repository.VariantRepository { return &variantRepo{m: s.master} }

type locationRepo struct{ m *masterData }

func (r *locationRepo) GetByCode(_ context.Context, code string) (*entity.Location, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if l, ok := r.m.locations[code]; ok {
		return &l, nil
	}
	if r.m.open && code != "" {
		return &entity.Location{Code: code, Name: code, Kind: entity.LocationKindStore, Active: true}, nil
	}
	return nil, nil
}

func (r *locationRepo) List(context.Context) ([]*entity.Location, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	list := make([]*entity.Location, 0, len(r.m.locations))
	for _, l := range r.m.locations {
		l := l
		list = append(list, &l)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

type variantRepo struct{ m *masterData }

func (r *variantRepo) GetByID(_ context.Context, id int64) (*entity.Variant, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if v, ok := r.m.variants[id]; ok {
		return &v, nil
	}
	if r.m.open && id > 0 {
		return &entity.Variant{ID: id, ProductCode: "P" + strconv.FormatInt(id, 10)}, nil
	}
	return nil, nil
}
