// Package classifier wraps the digit classification model and converts its
// raw score vector into a single labeled, confidence-scored decision.
package classifier

import (
	"context"
	"math"
	"time"

	"github.com/digitnet/digitnet-go/internal/errors"
	"github.com/digitnet/digitnet-go/internal/imaging"
)

// NumClasses is the number of digit classes the model scores.
const NumClasses = 10

// Classifier is the opaque model capability: it maps a normalized image
// tensor to a per-class score vector. Scores may be logits or
// probabilities depending on the backend; the Adapter normalizes either.
type Classifier interface {
	// Infer runs the model on a flat 28x28 tensor and returns 10 scores,
	// one per digit class.
	Infer(ctx context.Context, tensor []float32) ([]float32, error)
	// Close releases model resources.
	Close() error
}

// Result is a single classification decision.
type Result struct {
	Digit      int     // predicted digit, 0-9
	Confidence float64 // probability mass assigned to Digit, in [0,1]
}

// Adapter turns a Classifier's score vector into a Result and upholds the
// confidence-is-a-probability contract regardless of the backend's output
// convention.
type Adapter struct {
	classifier Classifier
	timeout    time.Duration
}

// NewAdapter wraps a classifier. Inference calls are bounded by timeout;
// expiry surfaces as an inference error rather than a hang.
func NewAdapter(c Classifier, timeout time.Duration) *Adapter {
	return &Adapter{classifier: c, timeout: timeout}
}

// Classify runs inference on a normalized tensor and returns the winning
// digit with its probability. Ties resolve to the lowest digit so repeated
// calls on the same tensor are reproducible.
func (a *Adapter) Classify(ctx context.Context, tensor []float32) (Result, error) {
	// Cheap shape assertion. A mismatch here is a caller bug, not a
	// user-input problem.
	if len(tensor) != imaging.TensorSize {
		return Result{}, errors.Newf("tensor has %d values, want %d", len(tensor), imaging.TensorSize).
			Component("classifier").
			Category(errors.CategoryShapeMismatch).
			Build()
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	scores, err := a.classifier.Infer(ctx, tensor)
	if err != nil {
		return Result{}, errors.New(err).
			Component("classifier").
			Category(errors.CategoryInference).
			Timing("inference", time.Since(start)).
			Build()
	}
	if len(scores) != NumClasses {
		return Result{}, errors.Newf("model returned %d scores, want %d", len(scores), NumClasses).
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}

	probs := softmax(scores)

	digit := 0
	best := probs[0]
	for i := 1; i < NumClasses; i++ {
		if probs[i] > best {
			best = probs[i]
			digit = i
		}
	}

	return Result{Digit: digit, Confidence: best}, nil
}

// softmax converts a score vector to a probability distribution. The model
// emits raw logits; applying softmax unconditionally keeps confidence in
// [0,1] even for backends that already return probabilities.
func softmax(scores []float32) []float64 {
	maxScore := float64(scores[0])
	for _, s := range scores[1:] {
		if float64(s) > maxScore {
			maxScore = float64(s)
		}
	}

	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(float64(s) - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
