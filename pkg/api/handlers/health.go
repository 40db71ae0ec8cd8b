package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/switchboard/pkg/api/types"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store Pinger
	hub   *Hub
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, hub *Hub) *HealthHandler {
	return &HealthHandler{store: store, hub: hub}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health status of the simulator and its store
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "Service is degraded"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	storeStatus := "connected"
	if err := h.store.PingContext(c.Request.Context()); err != nil {
		storeStatus = "disconnected"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if storeStatus != "connected" {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:    status,
		Store:     storeStatus,
		Sockets:   h.hub.Len(),
		Timestamp: time.Now(),
	})
}
