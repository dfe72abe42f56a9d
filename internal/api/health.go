// internal/api/health.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck handles the API health check endpoint. The classifier is
// loaded at startup, so readiness here reflects the real serving state
// rather than assuming it.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":     "healthy",
		"version":    c.Settings.Version,
		"build_date": c.Settings.BuildDate,
		"timestamp":  time.Now().Format(time.RFC3339),
	}

	classifierStatus := "ready"
	if c.Processor == nil || c.Processor.Adapter == nil {
		classifierStatus = "not_loaded"
		response["status"] = "degraded"
	}
	response["classifier_status"] = classifierStatus

	dbStatus := "connected"
	if _, err := c.DS.GetRecent(1); err != nil {
		dbStatus = "disconnected"
		response["status"] = "degraded"
	}
	response["database_status"] = dbStatus

	uptime := time.Since(c.startTime)
	response["uptime"] = uptime.String()
	response["uptime_seconds"] = uptime.Seconds()

	code := http.StatusOK
	if response["status"] != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, response)
}
