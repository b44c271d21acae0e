package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hiremind/hiremind-api/internal/auth"
	"github.com/hiremind/hiremind-api/internal/middleware"
	"github.com/hiremind/hiremind-api/internal/usecase"
	"github.com/hiremind/hiremind-api/internal/util"
	"go.uber.org/zap"
)

// respondError maps usecase sentinels onto the error envelope. Only
// validation failures echo their reason; everything else gets a fixed message.
func respondError(c *fiber.Ctx, log *zap.Logger, message string, err error) error {
	format := util.ErrorResponseFormat{
		Code:    fiber.StatusInternalServerError,
		Message: message,
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		format.Code = fiber.StatusBadRequest
		format.Message = validationReason(err)
		var ferr *util.FormError
		if errors.As(err, &ferr) {
			format.Message = ferr.Message
			format.Details = ferr.Errors
		}
	case errors.Is(err, usecase.ErrNotFound):
		format.Code = fiber.StatusNotFound
		format.Message = "Resource not found"
	case errors.Is(err, usecase.ErrForbidden):
		format.Code = fiber.StatusForbidden
		format.Message = "You are not allowed to access this resource"
	}

	if format.Code >= fiber.StatusInternalServerError {
		log.Error(message, zap.String("path", c.Path()), zap.Error(err))
	} else {
		log.Debug(message, zap.String("path", c.Path()), zap.Int("status", format.Code), zap.Error(err))
	}
	return util.ErrorResponse(c, format, err)
}

func validationReason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, usecase.ErrValidation.Error()+": "); i >= 0 {
		msg = msg[i+len(usecase.ErrValidation.Error())+2:]
	}
	if msg == "" {
		return "Invalid request"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    fiber.StatusBadRequest,
		Message: message,
	}, err)
}

// currentIdentity is set by middleware.Authenticate on every /api route. The
// zero Identity owns nothing, so a missing one fails every ownership check.
func currentIdentity(c *fiber.Ctx) auth.Identity {
	who, _ := middleware.IdentityFrom(c)
	return who
}
