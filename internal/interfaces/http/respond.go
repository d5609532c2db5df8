package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/medsalud/almacen-api/internal/application/dto"
	"github.com/medsalud/almacen-api/internal/domain"
	"github.com/medsalud/almacen-api/pkg/logger"
)

// validate instancia compartida para los DTOs de request.
var validate = validator.New()

// parseAndValidate decodifica el body y aplica las reglas de los tags.
func parseAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Validationf("cuerpo inválido")
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.Validationf("campo inválido: %s", verrs[0].Field())
		}
		return domain.Validationf("request inválido")
	}
	return nil
}

// respondError traduce el tipo del error de dominio al status HTTP. Los
// errores de sistema se responden genéricos y se registran; ocurren dentro
// de una transacción abortada, así que no hay efectos secundarios.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	switch {
	case domain.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case domain.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case domain.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case domain.IsForbidden(err):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
