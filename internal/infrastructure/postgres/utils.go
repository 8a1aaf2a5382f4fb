package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-moda/internal/domain"
)

// Códigos SQLSTATE que el dominio interpreta.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeInvalidText          = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isInvalidID indica que el id no tiene formato UUID: para una búsqueda equivale a "no existe".
func isInvalidID(err error) bool {
	return pgCode(err) == codeInvalidText
}

// mapError traduce errores de PostgreSQL a errores de dominio; el resto se envuelve con op.
func mapError(op, entityName, id string, err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return domain.Conflict(entityName, id)
	case codeUniqueViolation:
		return domain.Duplicate(entityName, id)
	case codeCheckViolation:
		return domain.ValidationOn(entityName, id, "", "restricción de datos violada")
	case codeForeignKeyViolation:
		return domain.ValidationOn(entityName, id, "", "referencia a dato maestro inexistente")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// limitArg convierte un límite no positivo en NULL (LIMIT NULL = sin límite).
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
