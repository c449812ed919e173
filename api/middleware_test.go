package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen interface{}
	router := gin.New()
	router.Use(RequestID(), AccessLog(logger.NewNop()))
	router.GET("/ping", func(c *gin.Context) {
		seen = c.Request.Context().Value(logger.RequestIDKey)
		c.Status(http.StatusNoContent)
	})

	t.Run("propagates incoming id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(headerRequestID, "req-42")

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "req-42", w.Header().Get(headerRequestID))
		assert.Equal(t, "req-42", seen)
	})

	t.Run("generates missing id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))

		id := w.Header().Get(headerRequestID)
		require.NotEmpty(t, id)
		assert.Equal(t, id, seen)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.InvalidConfiguration("bad"), http.StatusBadRequest},
		{domain.EmptySelection(), http.StatusBadRequest},
		{domain.SeatCountMismatch("p", 2, 1), http.StatusBadRequest},
		{domain.InvalidAmount("negative"), http.StatusBadRequest},
		{domain.NotFound("booking", "b"), http.StatusNotFound},
		{domain.HoldNotPermitted("a"), http.StatusForbidden},
		{domain.SeatUnavailable("p", "s"), http.StatusConflict},
		{domain.UnknownSeat("p", "s"), http.StatusConflict},
		{domain.InvalidState("done"), http.StatusConflict},
		{domain.InsufficientAdvance(10, 5), http.StatusUnprocessableEntity},
		{domain.MissingTransactionReference("upi"), http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", domain.SeatUnavailable("p", "s")), http.StatusConflict},
		{fmt.Errorf("database down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
