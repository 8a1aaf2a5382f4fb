package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
// Se comparan con errors.Is; los detalles viajan en *Error.
var (
	ErrValidation          = errors.New("entrada inválida")
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidTransition   = errors.New("transición de estado inválida")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
)

// Error describe un fallo de dominio con el contexto suficiente para armar un mensaje al usuario
// (entidad, id, campo, valor solicitado vs. valor real).
type Error struct {
	Kind      error
	Entity    string
	ID        string
	Field     string
	Message   string
	Requested *int64
	Actual    *int64
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Entity != "" {
		b.WriteString(": ")
		b.WriteString(e.Entity)
		if e.ID != "" {
			b.WriteString(" ")
			b.WriteString(e.ID)
		}
	}
	if e.Field != "" {
		b.WriteString(" [")
		b.WriteString(e.Field)
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Requested != nil && e.Actual != nil {
		fmt.Fprintf(&b, " (solicitado %d, real %d)", *e.Requested, *e.Actual)
	}
	return b.String()
}

// Unwrap permite errors.Is(err, domain.ErrXxx).
func (e *Error) Unwrap() error { return e.Kind }

// Details devuelve los campos no vacíos como mapa, para respuestas HTTP.
func (e *Error) Details() map[string]any {
	d := map[string]any{}
	if e.Entity != "" {
		d["entity"] = e.Entity
	}
	if e.ID != "" {
		d["id"] = e.ID
	}
	if e.Field != "" {
		d["field"] = e.Field
	}
	if e.Requested != nil {
		d["requested"] = *e.Requested
	}
	if e.Actual != nil {
		d["actual"] = *e.Actual
	}
	return d
}

// WithValues adjunta la cantidad solicitada y la real.
func (e *Error) WithValues(requested, actual int64) *Error {
	e.Requested = &requested
	e.Actual = &actual
	return e
}

// Validation construye un error de validación sobre un campo.
func Validation(field, message string) *Error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

// ValidationOn construye un error de validación atado a una entidad concreta.
func ValidationOn(entity, id, field, message string) *Error {
	return &Error{Kind: ErrValidation, Entity: entity, ID: id, Field: field, Message: message}
}

// NotFound construye un error de recurso inexistente.
func NotFound(entity, id string) *Error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id}
}

// InvalidTransition construye el error para un cambio de estado no permitido.
func InvalidTransition(entity, id, from, to string) *Error {
	return &Error{
		Kind:    ErrInvalidTransition,
		Entity:  entity,
		ID:      id,
		Field:   "status",
		Message: fmt.Sprintf("%s -> %s no permitido", from, to),
	}
}

// Conflict construye el error de compare-and-set perdido. Es seguro reintentar.
func Conflict(entity, id string) *Error {
	return &Error{Kind: ErrConcurrencyConflict, Entity: entity, ID: id, Message: "modificado concurrentemente, reintente"}
}

// Duplicate construye el error de recurso duplicado.
func Duplicate(entity, id string) *Error {
	return &Error{Kind: ErrDuplicate, Entity: entity, ID: id}
}
