package api

import (
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/pricing"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type checkoutRequest struct {
	AgencyID       string                  `json:"agency_id"`
	Packages       []domain.PackageBooking `json:"packages"`
	DiscountAmount int64                   `json:"discount_amount"`
	AdvancePaid    int64                   `json:"advance_paid"`
	PaymentMethod  domain.PaymentMethod    `json:"payment_method"`
	TransactionRef string                  `json:"transaction_ref"`
	Hold           bool                    `json:"hold"`
}

type quoteRequest struct {
	Packages []domain.PackageBooking `json:"packages"`
}

type quoteResponse struct {
	Packages []pricing.Quote `json:"packages"`
	Subtotal int64           `json:"subtotal"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/checkouts", h.checkout)
	router.POST("/quotes", h.quote)
	router.GET("/bookings/:id", h.get)
	router.POST("/bookings/:id/confirm", h.confirm)
	router.DELETE("/bookings/:id", h.cancel)
}

func (h *BookingHandler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), booking.CheckoutInput{
		AgencyID:       req.AgencyID,
		Initiator:      initiator(c),
		Packages:       req.Packages,
		DiscountAmount: req.DiscountAmount,
		AdvancePaid:    req.AdvancePaid,
		PaymentMethod:  req.PaymentMethod,
		TransactionRef: req.TransactionRef,
		Hold:           req.Hold,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// quote prices packages without touching seats or storage.
func (h *BookingHandler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp := quoteResponse{Packages: make([]pricing.Quote, 0, len(req.Packages))}
	for _, pb := range req.Packages {
		if err := pricing.Validate(pb); err != nil {
			writeError(c, err)
			return
		}
		q := pricing.QuotePackage(pb)
		resp.Packages = append(resp.Packages, q)
		resp.Subtotal += q.Subtotal
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	var req booking.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.service.ConfirmHold(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
