package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/digitnet/digitnet-go/internal/classifier"
	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/datastore"
	"github.com/digitnet/digitnet-go/internal/errors"
	"github.com/digitnet/digitnet-go/internal/imagestore"
	"github.com/digitnet/digitnet-go/internal/imaging"
	"github.com/digitnet/digitnet-go/internal/logging"
	"github.com/digitnet/digitnet-go/internal/processor"
)

// PredictFile runs the prediction pipeline on a local image file and
// prints the result. When save is true the prediction is also persisted
// to the configured datastore so it can receive feedback later.
func PredictFile(settings *conf.Settings, path string, save bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.New(err).
			Component("service").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	tfc, err := classifier.NewTFLiteClassifier(settings)
	if err != nil {
		return err
	}
	defer func() { _ = tfc.Close() }()

	adapter := classifier.NewAdapter(tfc, time.Duration(settings.Model.Timeout)*time.Second)
	ctx := context.Background()

	if !save {
		// No persistence requested, run the classifier directly.
		tensor, err := imaging.Normalize(raw)
		if err != nil {
			return err
		}
		result, err := adapter.Classify(ctx, tensor)
		if err != nil {
			return err
		}
		printResult(path, result.Digit, result.Confidence, "")
		return nil
	}

	dataStore := datastore.New(settings)
	if err := dataStore.Open(); err != nil {
		return err
	}
	defer closeDataStore(dataStore)

	images, err := imagestore.New(settings)
	if err != nil {
		return err
	}

	proc := processor.New(settings, adapter, dataStore, images, nil, logging.ForService("processor"))
	result, err := proc.Predict(ctx, raw)
	if err != nil {
		return err
	}
	printResult(path, result.Digit, result.Confidence, result.RecordID)
	return nil
}

func printResult(path string, digit int, confidence float64, recordID string) {
	fmt.Printf("%s: digit %d (confidence %.4f)\n", path, digit, confidence)
	if recordID != "" {
		fmt.Printf("saved as record %s\n", recordID)
	}
}
