package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thidaswick/WorqHub/pkg/logger"
)

// Pinger reports datastore reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves /health
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates the health handler. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	status := http.StatusOK
	body := echo.Map{
		"status":    "healthy",
		"service":   logger.ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "unreachable"
		} else {
			body["database"] = "ok"
		}
	}
	return c.JSON(status, body)
}
