package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/busreservation/internal/domain"
	"github.com/mkravets/busreservation/internal/service/fleet"
)

type RouteHandler struct {
	service fleet.FleetUseCase
}

type routeRequest struct {
	Source          string  `json:"source"`
	Destination     string  `json:"destination"`
	DistanceKM      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
	FareMultiplier  float64 `json:"fare_multiplier"`
}

func NewRouteHandler(service fleet.FleetUseCase) *RouteHandler {
	return &RouteHandler{service: service}
}

func (h *RouteHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

func (h *RouteHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *RouteHandler) list(c *gin.Context) {
	routes, err := h.service.ListRoutes(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

func (h *RouteHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	route, err := h.service.GetRoute(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (h *RouteHandler) create(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	route := toRoute(0, req)
	if err := h.service.CreateRoute(c.Request.Context(), route); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

func (h *RouteHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	route := toRoute(id, req)
	if err := h.service.UpdateRoute(c.Request.Context(), route); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (h *RouteHandler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.DeleteRoute(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toRoute(id int64, req routeRequest) *domain.Route {
	return &domain.Route{
		ID:             id,
		Source:         req.Source,
		Destination:    req.Destination,
		DistanceKM:     req.DistanceKM,
		Duration:       time.Duration(req.DurationMinutes) * time.Minute,
		FareMultiplier: req.FareMultiplier,
	}
}
