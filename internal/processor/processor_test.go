package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitnet/digitnet-go/internal/classifier"
	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/datastore"
	"github.com/digitnet/digitnet-go/internal/errors"
	"github.com/digitnet/digitnet-go/internal/imagestore"
)

// stubClassifier returns a fixed score vector for every inference.
type stubClassifier struct {
	scores []float32
	err    error
}

func (s *stubClassifier) Infer(ctx context.Context, tensor []float32) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func (s *stubClassifier) Close() error { return nil }

// failingImageStore always rejects writes.
type failingImageStore struct{}

func (failingImageStore) Save(ctx context.Context, id string, img []byte) (string, error) {
	return "", errors.Newf("disk full").
		Component("imagestore").
		Category(errors.CategoryImageStore).
		Build()
}

func (failingImageStore) Load(ctx context.Context, ref string) ([]byte, error) {
	return nil, errors.NewStd("unreachable")
}

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	s := &conf.Settings{}
	s.Model.Timeout = 10
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = t.TempDir() + "/test.db"
	s.Output.Timeout = 5
	s.ImageStore.Enabled = true
	s.ImageStore.Type = "disk"
	s.ImageStore.Path = t.TempDir()
	return s
}

func openStore(t *testing.T, settings *conf.Settings) datastore.Interface {
	t.Helper()
	ds := datastore.New(settings)
	require.NotNil(t, ds)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

// digitSevenScores makes digit 7 the clear winner.
func digitSevenScores() []float32 {
	return []float32{0, 0, 0, 0, 0, 0, 0, 12, 0, 0}
}

func whitePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestProcessor(t *testing.T, c classifier.Classifier, images imagestore.Store) (*Processor, datastore.Interface) {
	t.Helper()
	settings := testSettings(t)
	ds := openStore(t, settings)
	adapter := classifier.NewAdapter(c, time.Second)
	return New(settings, adapter, ds, images, nil, nil), ds
}

func TestPredictFlow(t *testing.T) {
	p, ds := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, nil)

	result, err := p.Predict(context.Background(), whitePNG(t))
	require.NoError(t, err)
	assert.Equal(t, 7, result.Digit)
	assert.Greater(t, result.Confidence, 0.9)
	assert.NotEmpty(t, result.RecordID)

	// The record is durable and carries the predicted fields.
	record, err := ds.Get(result.RecordID)
	require.NoError(t, err)
	assert.Equal(t, 7, record.PredictedDigit)
	assert.InDelta(t, result.Confidence, record.Confidence, 1e-9)
	assert.False(t, record.HasFeedback)
}

func TestPredictMalformedImage(t *testing.T) {
	p, ds := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, nil)

	_, err := p.Predict(context.Background(), []byte("not-an-image"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryImageDecode))

	// No record is created on failure.
	stats, err := ds.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestPredictInferenceFailure(t *testing.T) {
	broken := &stubClassifier{err: errors.NewStd("model gone")}
	p, ds := newTestProcessor(t, broken, nil)

	_, err := p.Predict(context.Background(), whitePNG(t))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryInference))

	stats, err := ds.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestPredictPersistsImage(t *testing.T) {
	settings := testSettings(t)
	ds := openStore(t, settings)
	images, err := imagestore.New(settings)
	require.NoError(t, err)
	adapter := classifier.NewAdapter(&stubClassifier{scores: digitSevenScores()}, time.Second)
	p := New(settings, adapter, ds, images, nil, nil)

	raw := whitePNG(t)
	result, err := p.Predict(context.Background(), raw)
	require.NoError(t, err)
	require.NotEmpty(t, result.ImageRef)

	// The reference points at the bytes that were submitted.
	stored, err := images.Load(context.Background(), result.ImageRef)
	require.NoError(t, err)
	assert.Equal(t, raw, stored)

	record, err := ds.Get(result.RecordID)
	require.NoError(t, err)
	assert.Equal(t, result.ImageRef, record.ImagePath)
}

func TestPredictImageStoreFailureNotFatal(t *testing.T) {
	p, ds := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, failingImageStore{})
	p.Settings.ImageStore.Required = false

	result, err := p.Predict(context.Background(), whitePNG(t))
	require.NoError(t, err, "optional image persistence must not abort the prediction")
	assert.Empty(t, result.ImageRef, "no dangling reference after a failed write")

	record, err := ds.Get(result.RecordID)
	require.NoError(t, err)
	assert.Empty(t, record.ImagePath)
}

func TestPredictImageStoreFailureFatalWhenRequired(t *testing.T) {
	p, ds := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, failingImageStore{})
	p.Settings.ImageStore.Required = true

	_, err := p.Predict(context.Background(), whitePNG(t))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryImageStore))

	stats, err := ds.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestApplyFeedbackIncorrect(t *testing.T) {
	p, _ := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, nil)

	result, err := p.Predict(context.Background(), whitePNG(t))
	require.NoError(t, err)

	record, err := p.ApplyFeedback(context.Background(), result.RecordID, false, 3)
	require.NoError(t, err)
	assert.True(t, record.HasFeedback)
	require.NotNil(t, record.TrueDigit)
	assert.Equal(t, 3, *record.TrueDigit)
}

func TestApplyFeedbackCorrectUsesPredictedDigit(t *testing.T) {
	p, _ := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, nil)

	result, err := p.Predict(context.Background(), whitePNG(t))
	require.NoError(t, err)

	// is_correct=true: the stored ground truth is the model's own digit,
	// whatever the caller supplied.
	record, err := p.ApplyFeedback(context.Background(), result.RecordID, true, 0)
	require.NoError(t, err)
	require.NotNil(t, record.TrueDigit)
	assert.Equal(t, 7, *record.TrueDigit)
}

func TestApplyFeedbackUnknownRecord(t *testing.T) {
	p, ds := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, nil)

	_, err := p.ApplyFeedback(context.Background(), "does-not-exist", false, 5)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	// Not-found feedback never silently creates a record.
	stats, err := ds.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestApplyFeedbackRejectsOutOfRangeDigit(t *testing.T) {
	p, _ := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, nil)

	_, err := p.ApplyFeedback(context.Background(), "any", false, 12)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestReady(t *testing.T) {
	p, _ := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, nil)
	assert.True(t, p.Ready())

	p.Adapter = nil
	assert.False(t, p.Ready())
}

func TestPredictConcurrent(t *testing.T) {
	p, ds := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, nil)

	raw := whitePNG(t)
	const workers = 16

	var wg sync.WaitGroup
	ids := make(chan string, workers)
	errs := make(chan error, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := p.Predict(context.Background(), raw)
			if err != nil {
				errs <- err
				return
			}
			ids <- result.RecordID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Errorf("concurrent predict failed: %v", err)
	}

	// Every request got its own record.
	seen := make(map[string]bool, workers)
	for id := range ids {
		assert.False(t, seen[id], "duplicate record id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)

	stats, err := ds.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(workers), stats.Total)
}

func TestApplyFeedbackConcurrentDistinctRecords(t *testing.T) {
	p, ds := newTestProcessor(t, &stubClassifier{scores: digitSevenScores()}, nil)

	const workers = 8
	recordIDs := make([]string, workers)
	for i := range workers {
		result, err := p.Predict(context.Background(), whitePNG(t))
		require.NoError(t, err)
		recordIDs[i] = result.RecordID
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			digit := i % 10
			if _, err := p.ApplyFeedback(context.Background(), recordIDs[i], false, digit); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent feedback failed: %v", err)
	}

	for i := range workers {
		record, err := ds.Get(recordIDs[i])
		require.NoError(t, err)
		assert.True(t, record.HasFeedback)
		require.NotNil(t, record.TrueDigit)
		assert.Equal(t, i%10, *record.TrueDigit)
	}
}
