// model.go this code defines the data model for the application
package datastore

import "time"

// Prediction represents a single inference event and its optional
// human-supplied correction. PredictedDigit and Confidence are set once at
// creation and never mutated; TrueDigit and HasFeedback change together,
// exactly once, when feedback arrives.
type Prediction struct {
	ID              string  `gorm:"primaryKey;type:varchar(36)"`
	ImagePath       string  // reference into the image store, empty when persistence is disabled
	PredictedDigit  int     `gorm:"not null"`
	Confidence      float64 `gorm:"not null"`
	TrueDigit       *int    // nil until feedback arrives
	HasFeedback     bool    `gorm:"index;default:false"`
	UsedForTraining bool    `gorm:"default:false"`
	CreatedAt       time.Time
}

// PredictionStats aggregates record counts for the stats endpoint.
type PredictionStats struct {
	Total        int64 `json:"total_predictions"`
	WithFeedback int64 `json:"with_feedback"`
	Correct      int64 `json:"correct"`
}
