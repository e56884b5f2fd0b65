package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
	apperrors "github.com/parking-occupancy/internal/pkg/errors"
	"github.com/parking-occupancy/internal/pkg/utils"
	"github.com/parking-occupancy/internal/pkg/validator"
	"go.uber.org/zap"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 1000
)

// toAppError maps domain and validation errors onto API errors. Anything
// unknown is returned as is and becomes a 500.
func toAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if details := validator.Details(err); details != nil {
		return apperrors.ErrInvalidRequest.WithDetails(details)
	}

	switch {
	case errors.Is(err, domain.ErrLotNotFound):
		return apperrors.ErrLotNotFound
	case errors.Is(err, domain.ErrSectorNotFound):
		return apperrors.ErrSectorNotFound
	case errors.Is(err, domain.ErrImageNotFound):
		return apperrors.ErrImageNotFound
	case errors.Is(err, domain.ErrNoImage):
		return apperrors.ErrNoImage
	case errors.Is(err, domain.ErrDuplicate):
		return apperrors.ErrDuplicate
	case errors.Is(err, domain.ErrDetectionFailed):
		return apperrors.ErrDetectionFailed.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return err
}

// sendError logs unexpected failures and writes the error response.
func sendError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	mapped := toAppError(err)

	var appErr *apperrors.AppError
	if !errors.As(mapped, &appErr) || appErr.StatusCode >= fiber.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return utils.SendError(c, mapped)
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidID.WithDetails(map[string]interface{}{
			name: c.Params(name),
		})
	}
	return id, nil
}

func parseLimit(c *fiber.Ctx) (int, error) {
	limit := c.QueryInt("limit", defaultEventsLimit)
	if limit < 1 || limit > maxEventsLimit {
		return 0, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"limit": "must be between 1 and 1000",
		})
	}
	return limit, nil
}

// parseBody decodes and validates a JSON body. An empty body leaves req as is.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return apperrors.ErrInvalidRequest.WithMessage("Invalid request body")
		}
	}
	return validator.Validate(req)
}
