package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	PackageID string `json:"package_id,omitempty"`
	SeatID    string `json:"seat_id,omitempty"`
}

var statusByKind = []struct {
	kind   error
	status int
}{
	{domain.ErrInvalidConfiguration, http.StatusBadRequest},
	{domain.ErrEmptySelection, http.StatusBadRequest},
	{domain.ErrSeatCountMismatch, http.StatusBadRequest},
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrHoldNotPermitted, http.StatusForbidden},
	{domain.ErrSeatUnavailable, http.StatusConflict},
	{domain.ErrUnknownSeat, http.StatusConflict},
	{domain.ErrInvalidState, http.StatusConflict},
	{domain.ErrInsufficientAdvance, http.StatusUnprocessableEntity},
	{domain.ErrMissingTransactionReference, http.StatusUnprocessableEntity},
}

func statusFor(err error) int {
	for _, m := range statusByKind {
		if errors.Is(err, m.kind) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// writeError renders taxonomy errors with their context. Anything else is
// logged and hidden behind a generic 500.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Get().ErrorContext(c.Request.Context(), "request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, errorResponse{Error: "internal error"})
		return
	}

	resp := errorResponse{Error: err.Error()}
	if derr, ok := domain.AsError(err); ok {
		resp.Kind = derr.Kind.Error()
		resp.PackageID = derr.PackageID
		resp.SeatID = derr.SeatID
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
