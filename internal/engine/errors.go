package engine

import (
	"compsage/server/internal/models"
	"errors"
	"fmt"
)

// ErrEmptyComparisonSet is returned by Summarize when no adjusted comps
// are supplied. An empty candidate search is a valid outcome; an empty
// valuation is not.
var ErrEmptyComparisonSet = errors.New("empty comparison set")

// ValidationError reports a malformed criteria field. Filtering never
// runs on criteria that fail validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid criteria: %s %s", e.Field, e.Reason)
}

// InvalidSubjectPropertyError reports a subject property unfit to
// anchor a comparison.
type InvalidSubjectPropertyError struct {
	Field  string
	Reason string
}

func (e *InvalidSubjectPropertyError) Error() string {
	return fmt.Sprintf("invalid subject property: %s %s", e.Field, e.Reason)
}

// IncompatibleComparisonError reports a single comp that cannot be
// meaningfully compared to the subject. Batch adjustment skips the comp
// and carries on; it never aborts the batch.
type IncompatibleComparisonError struct {
	CompID models.PropertyID
	Reason string
}

func (e *IncompatibleComparisonError) Error() string {
	return fmt.Sprintf("comp %d cannot be compared: %s", e.CompID, e.Reason)
}
