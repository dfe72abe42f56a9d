package service

import (
	"encoding/json"
	"io"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/datastore"
	"github.com/digitnet/digitnet-go/internal/logging"
)

// TrainingExample is one reviewed prediction emitted by the export flow.
// Label is the human-confirmed digit, not the model's guess.
type TrainingExample struct {
	ID         string  `json:"id"`
	Label      int     `json:"label"`
	ImagePath  string  `json:"image_path,omitempty"`
	Confidence float64 `json:"confidence"`
}

// ExportTraining writes predictions that received human feedback but have
// not yet been consumed for training as JSON lines on w. When mark is true
// the exported records are flagged so the next export skips them.
func ExportTraining(settings *conf.Settings, w io.Writer, limit int, mark bool) error {
	dataStore := datastore.New(settings)
	if err := dataStore.Open(); err != nil {
		return err
	}
	defer closeDataStore(dataStore)

	return exportTraining(dataStore, w, limit, mark)
}

func exportTraining(store datastore.Interface, w io.Writer, limit int, mark bool) error {
	records, err := store.GetUnusedWithFeedback(limit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	ids := make([]string, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.TrueDigit == nil {
			continue
		}
		example := TrainingExample{
			ID:         r.ID,
			Label:      *r.TrueDigit,
			ImagePath:  r.ImagePath,
			Confidence: r.Confidence,
		}
		if err := enc.Encode(&example); err != nil {
			return err
		}
		ids = append(ids, r.ID)
	}

	logging.Info("training export complete", "records", len(ids), "marked", mark)

	if !mark || len(ids) == 0 {
		return nil
	}
	return store.MarkUsedForTraining(ids)
}
