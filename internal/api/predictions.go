// internal/api/predictions.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/digitnet/digitnet-go/internal/datastore"
	"github.com/digitnet/digitnet-go/internal/imaging"
)

// PredictRequest is the predict endpoint's payload.
type PredictRequest struct {
	Image string `json:"image"` // base64-encoded image bytes
}

// PredictResponse is returned on a successful prediction.
type PredictResponse struct {
	Success        bool    `json:"success"`
	PredictedDigit int     `json:"predicted_digit"`
	Confidence     float64 `json:"confidence"`
	RecordID       string  `json:"record_id"`
}

// FeedbackRequest is the feedback endpoint's payload. When IsCorrect is
// true the original prediction becomes the ground truth and TrueDigit is
// ignored; otherwise TrueDigit carries the reviewer's correction.
type FeedbackRequest struct {
	RecordID  string `json:"record_id"`
	IsCorrect bool   `json:"is_correct"`
	TrueDigit *int   `json:"true_digit"`
}

// FeedbackResponse acknowledges an applied correction.
type FeedbackResponse struct {
	Success bool `json:"success"`
}

// PredictionRecord is the read-model for record inspection endpoints.
type PredictionRecord struct {
	ID              string    `json:"id"`
	PredictedDigit  int       `json:"predicted_digit"`
	Confidence      float64   `json:"confidence"`
	TrueDigit       *int      `json:"true_digit,omitempty"`
	HasFeedback     bool      `json:"has_feedback"`
	UsedForTraining bool      `json:"used_for_training"`
	ImagePath       string    `json:"image_path,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toPredictionRecord(p *datastore.Prediction) PredictionRecord {
	return PredictionRecord{
		ID:              p.ID,
		PredictedDigit:  p.PredictedDigit,
		Confidence:      p.Confidence,
		TrueDigit:       p.TrueDigit,
		HasFeedback:     p.HasFeedback,
		UsedForTraining: p.UsedForTraining,
		ImagePath:       p.ImagePath,
		CreatedAt:       p.CreatedAt,
	}
}

// Predict handles POST /api/v1/predict: decode the submitted image, run
// the pipeline and return the stored prediction.
func (c *Controller) Predict(ctx echo.Context) error {
	if !c.Processor.Ready() {
		return c.HandleError(ctx, nil, "prediction service unavailable", http.StatusServiceUnavailable)
	}

	req := &PredictRequest{}
	if err := ctx.Bind(req); err != nil {
		return c.HandleError(ctx, err, "invalid request format", http.StatusBadRequest)
	}

	raw, err := imaging.DecodeBase64(req.Image)
	if err != nil {
		return c.HandleCategorizedError(ctx, err)
	}

	c.Debug("predict request received", "bytes", len(raw))

	result, err := c.Processor.Predict(ctx.Request().Context(), raw)
	if err != nil {
		return c.HandleCategorizedError(ctx, err)
	}

	// A new record invalidates the cached stats.
	c.statsCache.Delete(statsCacheKey)

	return ctx.JSON(http.StatusOK, &PredictResponse{
		Success:        true,
		PredictedDigit: result.Digit,
		Confidence:     result.Confidence,
		RecordID:       result.RecordID,
	})
}

// Feedback handles POST /api/v1/feedback: apply a reviewer's verdict to
// an existing prediction record.
func (c *Controller) Feedback(ctx echo.Context) error {
	req := &FeedbackRequest{}
	if err := ctx.Bind(req); err != nil {
		return c.HandleError(ctx, err, "invalid request format", http.StatusBadRequest)
	}

	if req.RecordID == "" {
		return c.HandleError(ctx, nil, "record_id is required", http.StatusBadRequest)
	}
	if !req.IsCorrect && req.TrueDigit == nil {
		return c.HandleError(ctx, nil, "true_digit is required when is_correct is false", http.StatusBadRequest)
	}

	trueDigit := 0
	if req.TrueDigit != nil {
		trueDigit = *req.TrueDigit
	}

	_, err := c.Processor.ApplyFeedback(ctx.Request().Context(), req.RecordID, req.IsCorrect, trueDigit)
	if err != nil {
		return c.HandleCategorizedError(ctx, err)
	}

	c.statsCache.Delete(statsCacheKey)

	return ctx.JSON(http.StatusOK, &FeedbackResponse{Success: true})
}

// GetPrediction handles GET /api/v1/predictions/:id.
func (c *Controller) GetPrediction(ctx echo.Context) error {
	id := ctx.Param("id")

	record, err := c.DS.Get(id)
	if err != nil {
		return c.HandleCategorizedError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toPredictionRecord(&record))
}

// maxRecentLimit caps the recent-predictions listing.
const maxRecentLimit = 100

// GetRecentPredictions handles GET /api/v1/predictions/recent.
func (c *Controller) GetRecentPredictions(ctx echo.Context) error {
	limit := 10
	if v := ctx.QueryParam("limit"); v != "" {
		parsed, err := parsePositiveInt(v, maxRecentLimit)
		if err != nil {
			return c.HandleError(ctx, err, "invalid limit parameter", http.StatusBadRequest)
		}
		limit = parsed
	}

	c.Debug("recent predictions requested", "limit", limit)

	records, err := c.DS.GetRecent(limit)
	if err != nil {
		return c.HandleCategorizedError(ctx, err)
	}

	out := make([]PredictionRecord, 0, len(records))
	for i := range records {
		out = append(out, toPredictionRecord(&records[i]))
	}

	return ctx.JSON(http.StatusOK, out)
}
