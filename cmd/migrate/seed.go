package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/infrastructure/postgres"
)

type seedFile struct {
	Locations []seedLocation `json:"locations"`
	Variants  []seedVariant  `json:"variants"`
}

type seedLocation struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Active *bool  `json:"active"`
}

type seedVariant struct {
	ID          int64  `json:"id"`
	ProductCode string `json:"product_code"`
	Color       string `json:"color"`
	Size        string `json:"size"`
	Barcode     string `json:"barcode"`
}

func readSeed(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s seedFile
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("JSON inválido: %w", err)
	}
	return &s, s.validate()
}

func (s *seedFile) validate() error {
	for i, l := range s.Locations {
		if strings.TrimSpace(l.Code) == "" {
			return fmt.Errorf("locations[%d]: code vacío", i)
		}
		switch l.Kind {
		case entity.LocationKindStore, entity.LocationKindWarehouse, entity.LocationKindHQ:
		default:
			return fmt.Errorf("locations[%d]: kind %q inválido", i, l.Kind)
		}
	}
	for i, v := range s.Variants {
		if v.ID <= 0 {
			return fmt.Errorf("variants[%d]: id debe ser mayor que cero", i)
		}
		if strings.TrimSpace(v.ProductCode) == "" {
			return fmt.Errorf("variants[%d]: product_code vacío", i)
		}
	}
	return nil
}

func (l seedLocation) entity() *entity.Location {
	active := true
	if l.Active != nil {
		active = *l.Active
	}
	return &entity.Location{Code: l.Code, Name: l.Name, Kind: l.Kind, Active: active}
}

// applySeed carga todo en una transacción: o entra la semilla completa o nada.
func applySeed(ctx context.Context, pool *pgxpool.Pool, s *seedFile) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		locations := postgres.NewLocationRepository(tx)
		for _, l := range s.Locations {
			if err := locations.Upsert(ctx, l.entity()); err != nil {
				return err
			}
		}
		variants := postgres.NewVariantRepository(tx)
		for _, v := range s.Variants {
			if err := variants.Upsert(ctx, &entity.Variant{
				ID: v.ID, ProductCode: v.ProductCode, Color: v.Color, Size: v.Size, Barcode: v.Barcode,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
