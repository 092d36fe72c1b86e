package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain"
	"transfers/internal/geo"
	"transfers/internal/http/middleware"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     http.StatusText(status),
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// errorCode classifies err into the codes used by the API and the draft annotations.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, geo.ErrDisabled):
		return http.StatusServiceUnavailable, "unavailable"
	case domain.IsValidation(err):
		return http.StatusBadRequest, "validation"
	case domain.IsAuth(err):
		return http.StatusUnauthorized, "auth"
	case domain.IsSlotUnavailable(err):
		return http.StatusConflict, "slot_unavailable"
	case domain.IsPaymentFailed(err):
		return http.StatusPaymentRequired, "payment_failed"
	case domain.IsFetch(err):
		return http.StatusBadGateway, "fetch"
	case domain.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case domain.IsConflict(err):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// RespondDomainError maps domain errors to HTTP responses. message is the text shown to the user.
func RespondDomainError(c *gin.Context, err error, message string, details any) {
	status, code := errorCode(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if field := domain.FieldOf(err); field != "" && details == nil {
		details = gin.H{"field": field}
	}
	respondError(c, status, code, message, details)
}
