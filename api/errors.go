package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xraph/khata"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error       string `json:"error"`
	Field       string `json:"field,omitempty"`
	Pending     string `json:"pending_amount,omitempty"`
	CreditLimit string `json:"credit_limit,omitempty"`
}

// statusOf maps engine errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, khata.ErrInvalidInput):
		return http.StatusBadRequest
	case khata.IsNotFound(err):
		return http.StatusNotFound
	case khata.IsCreditError(err):
		return http.StatusUnprocessableEntity
	case khata.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, khata.ErrExportUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// fail aborts the request with the status and body for err.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	body := errorResponse{Error: err.Error()}

	var verr khata.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	var cerr *khata.CreditLimitError
	if errors.As(err, &cerr) {
		body.Pending = cerr.Pending.String()
		body.CreditLimit = cerr.CreditLimit.String()
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("khata api request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		body.Error = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}

// invalid reports a malformed request field as a validation error.
func invalid(field string, err error) error {
	return khata.ValidationError{Field: field, Message: err.Error()}
}
