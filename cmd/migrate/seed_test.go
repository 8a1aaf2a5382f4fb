package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadSeed(t *testing.T) {
	path := writeSeed(t, `{
		"locations": [
			{"code": "HQ", "name": "Central", "kind": "HQ"},
			{"code": "S9", "name": "Cerrada", "kind": "STORE", "active": false}
		],
		"variants": [{"id": 10, "product_code": "POLO-1", "color": "Blanco", "size": "L"}]
	}`)

	s, err := readSeed(path)
	require.NoError(t, err)
	require.Len(t, s.Locations, 2)
	require.Len(t, s.Variants, 1)
	assert.True(t, s.Locations[0].entity().Active, "active por defecto es true")
	assert.False(t, s.Locations[1].entity().Active)
}

func TestReadSeed_Invalida(t *testing.T) {
	tests := map[string]string{
		"json roto":        `{"locations": [`,
		"kind desconocido": `{"locations": [{"code": "X", "kind": "KIOSK"}]}`,
		"code vacío":       `{"locations": [{"code": " ", "kind": "STORE"}]}`,
		"variante sin id":  `{"variants": [{"id": 0, "product_code": "P"}]}`,
		"sin product_code": `{"variants": [{"id": 1}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := readSeed(writeSeed(t, body))
			assert.Error(t, err)
		})
	}
}
