package api

import (
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/layouts"
	"github.com/gin-gonic/gin"
)

type LayoutHandler struct {
	service layouts.LayoutUseCase
}

type seatsRequest struct {
	SeatIDs []string `json:"seat_ids" binding:"required"`
	Reason  string   `json:"reason"`
}

func NewLayoutHandler(service layouts.LayoutUseCase) *LayoutHandler {
	return &LayoutHandler{service: service}
}

func (h *LayoutHandler) Register(router *gin.RouterGroup) {
	router.POST("/layouts/preview", h.preview)
	router.PUT("/packages/:id/layout", h.configure)
	router.GET("/packages/:id/layout", h.get)
	router.POST("/packages/:id/seats/block", h.block)
	router.POST("/packages/:id/seats/unblock", h.unblock)
}

func (h *LayoutHandler) preview(c *gin.Context) {
	var cfg domain.BusConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, err)
		return
	}
	preview, err := h.service.Preview(cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *LayoutHandler) configure(c *gin.Context) {
	var cfg domain.BusConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.service.Configure(c.Request.Context(), c.Param("id"), cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *LayoutHandler) get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *LayoutHandler) block(c *gin.Context) {
	var req seatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.service.BlockSeats(c.Request.Context(), c.Param("id"), req.SeatIDs, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *LayoutHandler) unblock(c *gin.Context) {
	var req seatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.service.UnblockSeats(c.Request.Context(), c.Param("id"), req.SeatIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
