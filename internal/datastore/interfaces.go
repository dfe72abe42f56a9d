// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/errors"
)

// Interface abstracts the underlying database implementation and defines
// the operations available on prediction records.
type Interface interface {
	Open() error
	Close() error
	Save(p *Prediction) error
	Get(id string) (Prediction, error)
	SetFeedback(id string, trueDigit int) (Prediction, error)
	GetRecent(limit int) ([]Prediction, error)
	Stats() (PredictionStats, error)
	GetUnusedWithFeedback(limit int) ([]Prediction, error)
	MarkUsedForTraining(ids []string) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB      *gorm.DB      // GORM database instance
	Timeout time.Duration // per-operation bound
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	timeout := time.Duration(settings.Output.Timeout) * time.Second
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			DataStore: DataStore{Timeout: timeout},
			Settings:  settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			DataStore: DataStore{Timeout: timeout},
			Settings:  settings,
		}
	default:
		return nil
	}
}

// opContext bounds a single database operation.
func (ds *DataStore) opContext() (context.Context, context.CancelFunc) {
	if ds.Timeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), ds.Timeout)
}

// dbError wraps a gorm error with the database category, mapping context
// expiry to the same operational category so callers see one failure kind.
func dbError(err error, operation string) error {
	category := errors.CategoryDatabase
	if errors.Is(err, context.DeadlineExceeded) {
		category = errors.CategoryTimeout
	}
	return errors.New(err).
		Component("datastore").
		Category(category).
		Context("operation", operation).
		Build()
}

// Save stores a new prediction record.
func (ds *DataStore) Save(p *Prediction) error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	ctx, cancel := ds.opContext()
	defer cancel()

	if err := ds.DB.WithContext(ctx).Create(p).Error; err != nil {
		return dbError(err, "save")
	}
	return nil
}

// Get retrieves a prediction record by id.
func (ds *DataStore) Get(id string) (Prediction, error) {
	ctx, cancel := ds.opContext()
	defer cancel()

	var p Prediction
	err := ds.DB.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Prediction{}, errors.Newf("prediction %q not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return Prediction{}, dbError(err, "get")
	}
	return p, nil
}

// SetFeedback records the human-supplied true digit on an existing record.
// A second call overwrites the previous value; the record never loses its
// feedback flag once set.
func (ds *DataStore) SetFeedback(id string, trueDigit int) (Prediction, error) {
	ctx, cancel := ds.opContext()
	defer cancel()

	var p Prediction
	err := ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return err
		}
		p.TrueDigit = &trueDigit
		p.HasFeedback = true
		return tx.Model(&p).Updates(map[string]any{
			"true_digit":   trueDigit,
			"has_feedback": true,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Prediction{}, errors.Newf("prediction %q not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return Prediction{}, dbError(err, "set_feedback")
	}
	return p, nil
}

// GetRecent returns the most recent prediction records, newest first.
func (ds *DataStore) GetRecent(limit int) ([]Prediction, error) {
	ctx, cancel := ds.opContext()
	defer cancel()

	var predictions []Prediction
	err := ds.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&predictions).Error
	if err != nil {
		return nil, dbError(err, "get_recent")
	}
	return predictions, nil
}

// Stats aggregates record counts across the prediction table.
func (ds *DataStore) Stats() (PredictionStats, error) {
	ctx, cancel := ds.opContext()
	defer cancel()

	var stats PredictionStats
	db := ds.DB.WithContext(ctx)

	if err := db.Model(&Prediction{}).Count(&stats.Total).Error; err != nil {
		return PredictionStats{}, dbError(err, "stats_total")
	}
	if err := db.Model(&Prediction{}).
		Where("has_feedback = ?", true).
		Count(&stats.WithFeedback).Error; err != nil {
		return PredictionStats{}, dbError(err, "stats_feedback")
	}
	if err := db.Model(&Prediction{}).
		Where("has_feedback = ? AND true_digit = predicted_digit", true).
		Count(&stats.Correct).Error; err != nil {
		return PredictionStats{}, dbError(err, "stats_correct")
	}
	return stats, nil
}

// GetUnusedWithFeedback returns corrected records that have not yet been
// consumed by a training export.
func (ds *DataStore) GetUnusedWithFeedback(limit int) ([]Prediction, error) {
	ctx, cancel := ds.opContext()
	defer cancel()

	var predictions []Prediction
	err := ds.DB.WithContext(ctx).
		Where("has_feedback = ? AND used_for_training = ?", true, false).
		Order("created_at ASC").
		Limit(limit).
		Find(&predictions).Error
	if err != nil {
		return nil, dbError(err, "get_unused_with_feedback")
	}
	return predictions, nil
}

// MarkUsedForTraining flags the given records as consumed by training.
func (ds *DataStore) MarkUsedForTraining(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := ds.opContext()
	defer cancel()

	err := ds.DB.WithContext(ctx).
		Model(&Prediction{}).
		Where("id IN ?", ids).
		Update("used_for_training", true).Error
	if err != nil {
		return dbError(err, "mark_used_for_training")
	}
	return nil
}
