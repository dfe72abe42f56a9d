// internal/api/api.go
package api

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/datastore"
	"github.com/digitnet/digitnet-go/internal/errors"
	"github.com/digitnet/digitnet-go/internal/logging"
	"github.com/digitnet/digitnet-go/internal/observability"
	"github.com/digitnet/digitnet-go/internal/processor"
)

// Controller manages the API routes and handlers. It is the only component
// aware of the boundary protocol: it binds requests, invokes the processor
// and maps internal failure categories to HTTP responses.
type Controller struct {
	Echo      *echo.Echo
	Group     *echo.Group
	Processor *processor.Processor
	DS        datastore.Interface
	Settings  *conf.Settings
	Metrics   *observability.Metrics

	apiLogger  *slog.Logger
	statsCache *cache.Cache
	startTime  time.Time
}

// statsCacheTTL bounds how stale the stats endpoint may be.
const statsCacheTTL = 30 * time.Second

// New creates a new API controller and registers all routes on the given
// echo instance.
func New(e *echo.Echo, proc *processor.Processor, ds datastore.Interface,
	settings *conf.Settings, metrics *observability.Metrics) (*Controller, error) {

	c := &Controller{
		Echo:       e,
		Processor:  proc,
		DS:         ds,
		Settings:   settings,
		Metrics:    metrics,
		apiLogger:  logging.ForService("api"),
		statsCache: cache.New(statsCacheTTL, time.Minute),
		startTime:  time.Now(),
	}

	c.Group = e.Group("/api/v1")

	c.Group.Use(middleware.Recover())
	c.Group.Use(middleware.CORS())
	c.Group.Use(middleware.BodyLimit(settings.WebServer.BodyLimit))
	c.Group.Use(c.LoggingMiddleware())

	c.initRoutes()

	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	return c, nil
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	c.Group.POST("/predict", c.Predict)
	c.Group.POST("/feedback", c.Feedback)

	c.Group.GET("/predictions/recent", c.GetRecentPredictions)
	c.Group.GET("/predictions/:id", c.GetPrediction)
	c.Group.GET("/stats", c.GetStats)
}

// LoggingMiddleware creates a middleware function that logs API requests
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)

			if c.apiLogger == nil {
				return err
			}

			req := ctx.Request()
			res := ctx.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.String("ip", ctx.RealIP()),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}

			c.apiLogger.LogAttrs(req.Context(), slog.LevelInfo, "API Request", attrs...)

			return err
		}
	}
}

// ErrorResponse is the boundary failure shape. The message never carries
// internal diagnostic detail; the correlation id links the response to the
// server-side log line that does.
type ErrorResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`
}

// generateCorrelationID creates a unique identifier for error tracking.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	resp := &ErrorResponse{
		Success:       false,
		Message:       message,
		CorrelationID: generateCorrelationID(),
	}

	if c.apiLogger != nil {
		var errorStr string
		if err != nil {
			errorStr = err.Error()
		} else {
			errorStr = message
		}
		c.apiLogger.Error("API Error",
			"correlation_id", resp.CorrelationID,
			"message", message,
			"error", errorStr,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ctx.RealIP(),
		)
	}

	return ctx.JSON(code, resp)
}

// HandleCategorizedError maps an internal error to the boundary response
// using its error category. This is the single place where the failure
// taxonomy meets HTTP status codes.
func (c *Controller) HandleCategorizedError(ctx echo.Context, err error) error {
	switch errors.GetCategory(err) {
	case errors.CategoryImageDecode:
		return c.HandleError(ctx, err, "invalid image payload", http.StatusBadRequest)
	case errors.CategoryValidation:
		return c.HandleError(ctx, err, "invalid request", http.StatusBadRequest)
	case errors.CategoryNotFound:
		return c.HandleError(ctx, err, "record not found", http.StatusNotFound)
	case errors.CategoryInference:
		return c.HandleError(ctx, err, "prediction service unavailable", http.StatusServiceUnavailable)
	case errors.CategoryDatabase, errors.CategoryTimeout, errors.CategoryImageStore:
		return c.HandleError(ctx, err, "storage unavailable", http.StatusServiceUnavailable)
	default:
		// Shape mismatches and anything uncategorized are defects; the
		// client only learns that the request failed.
		return c.HandleError(ctx, err, "internal error", http.StatusInternalServerError)
	}
}

// Debug logs debug messages when debug mode is enabled
func (c *Controller) Debug(msg string, args ...any) {
	if c.Settings.WebServer.Debug && c.apiLogger != nil {
		c.apiLogger.Debug(msg, args...)
	}
}
