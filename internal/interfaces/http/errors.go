package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-moda/internal/application/dto"
	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Reportar los campos con su nombre JSON/query, que es lo que ve el cliente.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// requestError es un error de validación de entrada con detalle por campo.
type requestError struct {
	details map[string]any
}

func (e *requestError) Error() string { return domain.ErrValidation.Error() }
func (e *requestError) Unwrap() error { return domain.ErrValidation }

// validateStruct valida tags `validate` y devuelve un error con detalle por campo.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fieldPath(fe)] = formatFieldError(fe)
	}
	return &requestError{details: details}
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo requerido"
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "datetime":
		return "fecha inválida, use RFC 3339"
	default:
		return "valor inválido"
	}
}

// writeError traduce errores de dominio a respuestas HTTP. Los 5xx se registran.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	resp := dto.ErrorResponse{Message: err.Error()}
	status := fiber.StatusInternalServerError

	var derr *domain.Error
	if errors.As(err, &derr) {
		if d := derr.Details(); len(d) > 0 {
			resp.Details = d
		}
	}
	var rerr *requestError
	if errors.As(err, &rerr) {
		resp.Details = rerr.details
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		status, resp.Code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, resp.Code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, resp.Code = fiber.StatusConflict, "INVALID_STATE_TRANSITION"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		status, resp.Code = fiber.StatusConflict, "CONCURRENCY_CONFLICT"
		resp.Retryable = true
	case errors.Is(err, domain.ErrDuplicate):
		status, resp.Code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrUnauthorized):
		status, resp.Code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	default:
		resp.Code = "INTERNAL"
		resp.Message = "error interno"
		resp.Details = nil
		logger.OrNop(log).Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	}
	return c.Status(status).JSON(resp)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

// ErrorHandler es el manejador de errores de Fiber para lo que escapa de los handlers
// (rutas inexistentes, panics recuperados).
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "HTTP_ERROR"
			if fe.Code == fiber.StatusNotFound {
				code = "NOT_FOUND"
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		return writeError(c, log, err)
	}
}
