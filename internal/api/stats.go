// internal/api/stats.go
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/digitnet/digitnet-go/internal/datastore"
	"github.com/digitnet/digitnet-go/internal/errors"
)

const statsCacheKey = "prediction_stats"

// GetStats handles GET /api/v1/stats. Counts are cached briefly since the
// dashboard polls this endpoint.
func (c *Controller) GetStats(ctx echo.Context) error {
	if cached, found := c.statsCache.Get(statsCacheKey); found {
		if stats, ok := cached.(datastore.PredictionStats); ok {
			return ctx.JSON(http.StatusOK, stats)
		}
	}

	stats, err := c.DS.Stats()
	if err != nil {
		return c.HandleCategorizedError(ctx, err)
	}

	c.statsCache.SetDefault(statsCacheKey, stats)

	return ctx.JSON(http.StatusOK, stats)
}

// parsePositiveInt parses a query parameter as a bounded positive integer.
func parsePositiveInt(s string, maxValue int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(err).
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	if v <= 0 || v > maxValue {
		return 0, errors.Newf("value %d out of range 1-%d", v, maxValue).
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	return v, nil
}
