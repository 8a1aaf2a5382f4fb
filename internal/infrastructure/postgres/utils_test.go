package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-moda/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{codeSerializationFailure, domain.ErrConcurrencyConflict},
		{codeDeadlockDetected, domain.ErrConcurrencyConflict},
		{codeUniqueViolation, domain.ErrDuplicate},
		{codeCheckViolation, domain.ErrValidation},
		{codeForeignKeyViolation, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: tt.code})
			assert.ErrorIs(t, mapError("op", "stock_balance", "S1", err), tt.want)
		})
	}
}

func TestMapError_OtrosErroresSeEnvuelven(t *testing.T) {
	base := errors.New("conexión cerrada")
	err := mapError("upsert stock balance", "stock_balance", "S1", base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "upsert stock balance")
	assert.NoError(t, mapError("op", "x", "", nil))
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Nil(t, limitArg(-1))
	assert.Equal(t, 50, limitArg(50))
}
