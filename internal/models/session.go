package models

import "time"

// AdjustmentSession is a saved analyst worksheet for one subject/comp
// pair. At most one session exists per pair; saving again replaces it.
type AdjustmentSession struct {
	ID            string           `json:"id"`
	SubjectID     PropertyID       `json:"subject_id"`
	CompID        PropertyID       `json:"comp_id"`
	Adjustments   AdjustmentVector `json:"adjustments"`
	AdjustedPrice int64            `json:"adjusted_price"`
	Notes         string           `json:"notes"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
