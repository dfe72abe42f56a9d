// Package processor sequences the prediction pipeline: normalize the
// submitted image, classify it, persist the record, and later apply
// human feedback to that record.
package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/digitnet/digitnet-go/internal/classifier"
	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/datastore"
	"github.com/digitnet/digitnet-go/internal/errors"
	"github.com/digitnet/digitnet-go/internal/imagestore"
	"github.com/digitnet/digitnet-go/internal/imaging"
	"github.com/digitnet/digitnet-go/internal/observability"
)

// PredictResult is the outcome of a successful predict flow.
type PredictResult struct {
	RecordID   string
	Digit      int
	Confidence float64
	ImageRef   string
}

// Processor owns the predict and feedback flows. Each request is handled
// independently; the only shared mutable state is the datastore and the
// classifier interpreter, both safe behind their own synchronization.
type Processor struct {
	Settings *conf.Settings
	Adapter  *classifier.Adapter
	DS       datastore.Interface
	Images   imagestore.Store // nil when image persistence is disabled
	Metrics  *observability.Metrics

	log *slog.Logger
}

// New assembles a processor from its collaborators.
func New(settings *conf.Settings, adapter *classifier.Adapter, ds datastore.Interface,
	images imagestore.Store, metrics *observability.Metrics, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		Settings: settings,
		Adapter:  adapter,
		DS:       ds,
		Images:   images,
		Metrics:  metrics,
		log:      log,
	}
}

// Predict runs the full predict flow on raw image bytes. A prediction
// whose record cannot be persisted is reported as a failure, because an
// un-persisted prediction can never receive feedback. On failure no
// record exists at all.
func (p *Processor) Predict(ctx context.Context, raw []byte) (*PredictResult, error) {
	tensor, err := imaging.Normalize(raw)
	if err != nil {
		p.countPrediction("invalid_image")
		return nil, err
	}

	start := time.Now()
	result, err := p.Adapter.Classify(ctx, tensor)
	if err != nil {
		p.countPrediction("inference_error")
		return nil, err
	}
	if p.Metrics != nil {
		p.Metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	}

	id := uuid.New().String()

	var imageRef string
	if p.Images != nil {
		imageRef, err = p.Images.Save(ctx, id, raw)
		if err != nil {
			if p.Settings.ImageStore.Required {
				p.countPrediction("image_store_error")
				return nil, err
			}
			// Persistence of the image is best-effort unless configured
			// otherwise; the record is created without a reference.
			p.log.Warn("image persistence failed, continuing without reference",
				"record_id", id, "error", err)
			imageRef = ""
		}
	}

	record := &datastore.Prediction{
		ID:             id,
		ImagePath:      imageRef,
		PredictedDigit: result.Digit,
		Confidence:     result.Confidence,
		CreatedAt:      time.Now(),
	}
	if err := p.DS.Save(record); err != nil {
		p.countPrediction("store_error")
		return nil, err
	}

	p.countPrediction("success")
	if p.Metrics != nil {
		p.Metrics.PredictionConfidence.Observe(result.Confidence)
	}

	p.log.Info("prediction stored",
		"record_id", id,
		"digit", result.Digit,
		"confidence", result.Confidence)

	return &PredictResult{
		RecordID:   id,
		Digit:      result.Digit,
		Confidence: result.Confidence,
		ImageRef:   imageRef,
	}, nil
}

// ApplyFeedback records the reviewer's verdict on an existing prediction.
// When the reviewer confirms the prediction, the record's own predicted
// digit becomes the ground truth; otherwise trueDigit does. The record
// stores only the resulting ground truth, not the verdict itself.
func (p *Processor) ApplyFeedback(ctx context.Context, id string, isCorrect bool, trueDigit int) (*datastore.Prediction, error) {
	if !isCorrect && (trueDigit < 0 || trueDigit > 9) {
		p.countFeedback("invalid_digit")
		return nil, errors.Newf("true digit %d out of range 0-9", trueDigit).
			Component("processor").
			Category(errors.CategoryValidation).
			Build()
	}

	if isCorrect {
		record, err := p.DS.Get(id)
		if err != nil {
			p.countFeedback(feedbackOutcome(err))
			return nil, err
		}
		trueDigit = record.PredictedDigit
	}

	updated, err := p.DS.SetFeedback(id, trueDigit)
	if err != nil {
		p.countFeedback(feedbackOutcome(err))
		return nil, err
	}

	p.countFeedback("success")
	p.log.Info("feedback applied",
		"record_id", id,
		"true_digit", trueDigit,
		"was_correct", isCorrect)

	return &updated, nil
}

// Ready reports whether the pipeline can serve predict requests: the
// classifier is loaded and the datastore answers a cheap probe.
func (p *Processor) Ready() bool {
	if p.Adapter == nil || p.DS == nil {
		return false
	}
	_, err := p.DS.GetRecent(1)
	return err == nil
}

func (p *Processor) countPrediction(outcome string) {
	if p.Metrics != nil {
		p.Metrics.PredictionTotal.WithLabelValues(outcome).Inc()
	}
}

func (p *Processor) countFeedback(outcome string) {
	if p.Metrics != nil {
		p.Metrics.FeedbackTotal.WithLabelValues(outcome).Inc()
	}
}

func feedbackOutcome(err error) string {
	if errors.IsNotFound(err) {
		return "not_found"
	}
	return "store_error"
}
