package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/domain"
)

// Status HTTP por clase de rechazo del libro.
var classStatus = map[domain.ErrorClass]int{
	domain.ClassUniqueness:  fiber.StatusConflict,
	domain.ClassBalance:     fiber.StatusConflict,
	domain.ClassReferential: fiber.StatusConflict,
	domain.ClassNotFound:    fiber.StatusNotFound,
	domain.ClassInvalid:     fiber.StatusBadRequest,
}

var classMessage = map[domain.ErrorClass]string{
	domain.ClassUniqueness:  "el registro ya existe",
	domain.ClassBalance:     "el stock quedaría negativo",
	domain.ClassReferential: "el registro está en uso",
	domain.ClassNotFound:    "registro no encontrado",
	domain.ClassInvalid:     "datos inválidos",
}

// writeError traduce un error de los casos de uso a la respuesta HTTP.
// Los rechazos del libro viajan con su clave y parámetros; el resto usa códigos fijos.
func writeError(c *fiber.Ctx, err error) error {
	if le, ok := domain.AsLedgerError(err); ok {
		class := le.Class()
		return c.Status(classStatus[class]).JSON(dto.ErrorResponse{
			Code:    string(le.Key),
			Message: classMessage[class],
			Params:  le.Params,
		})
	}
	switch {
	case errors.Is(err, domain.ErrUsernameAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "USERNAME_EXISTS", Message: "el nombre de usuario ya está registrado"})
	case errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "USER_NOT_FOUND", Message: "usuario no encontrado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrCannotDeleteSelf):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CANNOT_DELETE_SELF", Message: "un usuario no puede eliminarse a sí mismo"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "cuenta inactiva"})
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
