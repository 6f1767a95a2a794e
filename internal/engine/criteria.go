package engine

import (
	"compsage/server/internal/models"
	"fmt"
	"math"
)

// Defaults for the derived search envelope.
const (
	DefaultRadiusMiles   = 3.0
	DefaultRecencyMonths = 6
	DefaultPriceBandPct  = 20.0
	DefaultMaxResults    = 5
)

// ValidateSubject checks the subject attributes every comparison
// depends on.
func ValidateSubject(subject models.PropertyRecord) error {
	if subject.SquareFeet <= 0 {
		return &InvalidSubjectPropertyError{Field: "square_feet", Reason: "must be positive"}
	}
	if subject.Bedrooms < 0 {
		return &InvalidSubjectPropertyError{Field: "bedrooms", Reason: "must not be negative"}
	}
	if subject.Bathrooms < 0 {
		return &InvalidSubjectPropertyError{Field: "bathrooms", Reason: "must not be negative"}
	}
	return nil
}

// DeriveDefaultCriteria builds the standard search envelope around a
// subject: one bedroom either side (floored at 1), one bathroom either
// side (floored at 1), ±20% living area, the subject's property type,
// any status, a 3 mile radius, a 6 month recency window for sold comps
// and a ±20% price band.
func DeriveDefaultCriteria(subject models.PropertyRecord) (models.CompCriteria, error) {
	if err := ValidateSubject(subject); err != nil {
		return models.CompCriteria{}, err
	}
	if !subject.PropertyType.Valid() {
		return models.CompCriteria{}, &InvalidSubjectPropertyError{
			Field:  "property_type",
			Reason: fmt.Sprintf("unknown type %q", string(subject.PropertyType)),
		}
	}

	propType := subject.PropertyType
	return models.CompCriteria{
		RadiusMiles: DefaultRadiusMiles,
		BedroomBand: models.IntBand{
			Min: max(1, subject.Bedrooms-1),
			Max: subject.Bedrooms + 1,
		},
		BathroomBand: models.FloatBand{
			Min: math.Max(1, math.Floor(subject.Bathrooms-1)),
			Max: math.Ceil(subject.Bathrooms + 1),
		},
		SquareFeetBand: models.IntBand{
			Min: int(math.Round(float64(subject.SquareFeet) * 0.8)),
			Max: int(math.Round(float64(subject.SquareFeet) * 1.2)),
		},
		PropertyType:  &propType,
		RecencyMonths: DefaultRecencyMonths,
		PriceBandPct:  DefaultPriceBandPct,
		MaxResults:    DefaultMaxResults,
	}, nil
}

// ValidateCriteria rejects malformed criteria before any filtering
// runs. The returned error names the offending field.
func ValidateCriteria(c models.CompCriteria) error {
	if c.RadiusMiles <= 0 {
		return &ValidationError{Field: "radius_miles", Reason: "must be positive"}
	}
	if c.BedroomBand.Min < 0 {
		return &ValidationError{Field: "bedroom_band", Reason: "min must not be negative"}
	}
	if c.BedroomBand.Min > c.BedroomBand.Max {
		return &ValidationError{Field: "bedroom_band", Reason: "min exceeds max"}
	}
	if c.BathroomBand.Min < 0 {
		return &ValidationError{Field: "bathroom_band", Reason: "min must not be negative"}
	}
	if c.BathroomBand.Min > c.BathroomBand.Max {
		return &ValidationError{Field: "bathroom_band", Reason: "min exceeds max"}
	}
	if c.SquareFeetBand.Min < 0 {
		return &ValidationError{Field: "square_feet_band", Reason: "min must not be negative"}
	}
	if c.SquareFeetBand.Min > c.SquareFeetBand.Max {
		return &ValidationError{Field: "square_feet_band", Reason: "min exceeds max"}
	}
	if c.PropertyType != nil && !c.PropertyType.Valid() {
		return &ValidationError{
			Field:  "property_type",
			Reason: fmt.Sprintf("unknown type %q", string(*c.PropertyType)),
		}
	}
	for _, s := range c.Statuses {
		if !s.Valid() {
			return &ValidationError{
				Field:  "statuses",
				Reason: fmt.Sprintf("unknown status %q", string(s)),
			}
		}
	}
	if c.RecencyMonths < 0 {
		return &ValidationError{Field: "recency_months", Reason: "must not be negative"}
	}
	if c.PriceBandPct < 0 {
		return &ValidationError{Field: "price_band_pct", Reason: "must not be negative"}
	}
	if c.MaxResults < 1 {
		return &ValidationError{Field: "max_results", Reason: "must be at least 1"}
	}
	return nil
}
