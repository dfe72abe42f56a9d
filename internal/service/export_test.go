package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/datastore"
)

func openTestStore(t *testing.T) datastore.Interface {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = t.TempDir() + "/test.db"
	settings.Output.Timeout = 5

	ds := datastore.New(settings)
	require.NotNil(t, ds)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

// seedPrediction stores a record and optionally applies feedback to it.
func seedPrediction(t *testing.T, ds datastore.Interface, id string, digit int, withFeedback bool) {
	t.Helper()
	require.NoError(t, ds.Save(&datastore.Prediction{
		ID:             id,
		PredictedDigit: digit,
		Confidence:     0.9,
		CreatedAt:      time.Now(),
	}))
	if withFeedback {
		_, err := ds.SetFeedback(id, digit)
		require.NoError(t, err)
	}
}

func decodeExamples(t *testing.T, buf *bytes.Buffer) []TrainingExample {
	t.Helper()
	var examples []TrainingExample
	dec := json.NewDecoder(buf)
	for dec.More() {
		var ex TrainingExample
		require.NoError(t, dec.Decode(&ex))
		examples = append(examples, ex)
	}
	return examples
}

func TestExportTrainingOnlyReviewedRecords(t *testing.T) {
	ds := openTestStore(t)
	seedPrediction(t, ds, "rec-1", 3, true)
	seedPrediction(t, ds, "rec-2", 7, false)
	seedPrediction(t, ds, "rec-3", 5, true)

	var buf bytes.Buffer
	require.NoError(t, exportTraining(ds, &buf, 100, true))

	examples := decodeExamples(t, &buf)
	require.Len(t, examples, 2)

	labels := map[string]int{}
	for _, ex := range examples {
		labels[ex.ID] = ex.Label
	}
	assert.Equal(t, 3, labels["rec-1"])
	assert.Equal(t, 5, labels["rec-3"])
	assert.NotContains(t, labels, "rec-2")
}

func TestExportTrainingMarksRecordsConsumed(t *testing.T) {
	ds := openTestStore(t)
	seedPrediction(t, ds, "rec-1", 4, true)

	var first bytes.Buffer
	require.NoError(t, exportTraining(ds, &first, 100, true))
	require.Len(t, decodeExamples(t, &first), 1)

	// A second export finds nothing left to hand out.
	var second bytes.Buffer
	require.NoError(t, exportTraining(ds, &second, 100, true))
	assert.Empty(t, decodeExamples(t, &second))
}

func TestExportTrainingWithoutMarking(t *testing.T) {
	ds := openTestStore(t)
	seedPrediction(t, ds, "rec-1", 8, true)

	var first bytes.Buffer
	require.NoError(t, exportTraining(ds, &first, 100, false))
	require.Len(t, decodeExamples(t, &first), 1)

	var second bytes.Buffer
	require.NoError(t, exportTraining(ds, &second, 100, false))
	assert.Len(t, decodeExamples(t, &second), 1)
}

func TestExportTrainingHonorsLimit(t *testing.T) {
	ds := openTestStore(t)
	for i := range 5 {
		seedPrediction(t, ds, fmt.Sprintf("rec-%d", i), i, true)
	}

	var buf bytes.Buffer
	require.NoError(t, exportTraining(ds, &buf, 2, true))
	assert.Len(t, decodeExamples(t, &buf), 2)
}
