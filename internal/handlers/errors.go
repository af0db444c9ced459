package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"kasap-service/internal/dto"
	"kasap-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// respondError maps service errors onto HTTP statuses and dto bodies.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var (
		verr *service.ValidationError
		terr *service.InvalidTransitionError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(verr.Reason, []dto.FieldError{{Field: verr.Field, Message: verr.Reason}}))
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidResetCode):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
	case errors.Is(err, service.ErrAuthRequired),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError(err.Error()))
	case errors.Is(err, service.ErrOwnership), errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.As(err, &terr):
		c.JSON(http.StatusConflict, dto.NewConflictError(dto.CodeInvalidTransition, err.Error(), terr.From+" -> "+terr.To))
	case errors.Is(err, service.ErrTerminalState):
		c.JSON(http.StatusConflict, dto.NewConflictError(dto.CodeTerminalState, err.Error(), ""))
	case errors.Is(err, service.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, dto.NewConflictError(dto.CodeSlotUnavailable, err.Error(), ""))
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusConflict, dto.NewConflictError(dto.CodeEmailExists, err.Error(), ""))
	case errors.Is(err, service.ErrTooManyRequests):
		c.JSON(http.StatusTooManyRequests, dto.NewRateLimitedError(err.Error()))
	case errors.Is(err, service.ErrNetwork):
		log.Error("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, dto.NewBadGatewayError("network error, please try again"))
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

// respondBindError reports a request body that failed binding.
func respondBindError(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
		return
	}
	fields := make([]dto.FieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, dto.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Tag:     fe.Tag(),
		})
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", fields))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uuid":
		return "must be a UUID"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}

func badParam(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, dto.NewValidationError(msg, []dto.FieldError{{Field: field, Message: msg}}))
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badParam(c, name, "must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	uid, ok := service.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("user not authenticated"))
	}
	return uid, ok
}
