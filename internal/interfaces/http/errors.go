package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// Error codes of responses that are not validation failures.
const (
	CodeInvalidBody  = "INVALID_BODY"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeArchived     = "ARCHIVED"
	CodeInternal     = "INTERNAL"
)

// writeError maps a use-case error to its HTTP status and body. Storage and
// unknown failures are logged with their detail and answered with a generic message.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: ve.Code, Message: ve.Message, Field: ve.Field})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeValidation, Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: CodeUnauthorized, Message: "invalid credentials or session"})
	case errors.Is(err, domain.ErrForbidden):
		log.Warn().Str("path", c.Path()).Str("request_id", GetRequestID(c)).Msg("forbidden")
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: CodeForbidden, Message: domain.ErrForbidden.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: CodeNotFound, Message: domain.ErrNotFound.Error()})
	case errors.Is(err, domain.ErrArchived):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: CodeArchived, Message: domain.ErrArchived.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: CodeConflict, Message: err.Error()})
	}
	log.Error().Err(err).Str("path", c.Path()).Str("request_id", GetRequestID(c)).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: CodeInternal, Message: "internal error, try again later"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidBody, Message: "invalid request body"})
}

// paramID reads a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, "must be a positive number")
	}
	return uint(id), nil
}

// ErrorHandler is the fiber fallback for errors no handler translated, such as
// unknown routes and recovered panics.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: CodeForStatus(fe.Code), Message: fe.Message})
		}
		return writeError(c, log, err)
	}
}

// CodeForStatus returns the generic error code of an HTTP status.
func CodeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return CodeInvalidBody
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusConflict:
		return CodeConflict
	}
	return CodeInternal
}
