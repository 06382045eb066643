package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/busreservation/internal/domain"
	"github.com/mkravets/busreservation/internal/service/fleet"
)

type BusHandler struct {
	service fleet.FleetUseCase
}

type busRequest struct {
	Number        string `json:"number"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	TotalSeats    int    `json:"total_seats"`
	BaseFareCents int64  `json:"base_fare_cents"`
	Status        string `json:"status"`
}

func NewBusHandler(service fleet.FleetUseCase) *BusHandler {
	return &BusHandler{service: service}
}

// Register mounts the read-only bus endpoints.
func (h *BusHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

// RegisterAdmin mounts the mutating endpoints.
func (h *BusHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *BusHandler) list(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	buses, err := h.service.ListBuses(c.Request.Context(), activeOnly)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buses)
}

func (h *BusHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	bus, err := h.service.GetBus(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

func (h *BusHandler) create(c *gin.Context) {
	var req busRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bus := &domain.Bus{
		Number:        req.Number,
		Name:          req.Name,
		Category:      domain.BusCategory(req.Category),
		TotalSeats:    req.TotalSeats,
		BaseFareCents: req.BaseFareCents,
		Status:        domain.BusStatus(req.Status),
	}
	if err := h.service.CreateBus(c.Request.Context(), bus); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bus)
}

func (h *BusHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req busRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bus := &domain.Bus{
		ID:            id,
		Number:        req.Number,
		Name:          req.Name,
		Category:      domain.BusCategory(req.Category),
		TotalSeats:    req.TotalSeats,
		BaseFareCents: req.BaseFareCents,
		Status:        domain.BusStatus(req.Status),
	}
	if err := h.service.UpdateBus(c.Request.Context(), bus); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

func (h *BusHandler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.DeleteBus(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
