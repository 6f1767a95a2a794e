package engine

import (
	"compsage/server/internal/models"
	"errors"
	"math"
)

// RateSchedule holds the per-unit dollar rates behind the automatic
// adjustment categories. Deployments can replace the defaults through a
// rate file; see config.LoadRateSchedule.
type RateSchedule struct {
	PerSquareFoot int64 `json:"per_square_foot"`
	PerBedroom    int64 `json:"per_bedroom"`
	PerBathroom   int64 `json:"per_bathroom"`
	PerYearOfAge  int64 `json:"per_year_of_age"`
}

// DefaultRates returns the standard schedule: $100 per square foot,
// $5,000 per bedroom, $7,500 per bathroom, $1,000 per year of age.
func DefaultRates() RateSchedule {
	return RateSchedule{
		PerSquareFoot: 100,
		PerBedroom:    5000,
		PerBathroom:   7500,
		PerYearOfAge:  1000,
	}
}

// ComputeAdjustment builds the adjustment vector for one subject/comp
// pair. Each difference is subject minus comp, priced at the schedule's
// rate and added to the comp's price, so the result estimates what the
// comp would sell for if it had the subject's features. The age
// adjustment applies only when both year-built values are present. The
// garage, basement, location, condition and other categories stay zero
// unless overridden. Overrides replace computed values verbatim.
func ComputeAdjustment(subject, comp models.PropertyRecord, overrides models.AdjustmentOverrides, rates RateSchedule) (models.AdjustedComp, error) {
	if comp.SquareFeet <= 0 {
		return models.AdjustedComp{}, &IncompatibleComparisonError{
			CompID: comp.ID,
			Reason: "square footage must be positive",
		}
	}

	var v models.AdjustmentVector
	v.SquareFeet = int64(subject.SquareFeet-comp.SquareFeet) * rates.PerSquareFoot
	v.Bedrooms = int64(subject.Bedrooms-comp.Bedrooms) * rates.PerBedroom
	v.Bathrooms = int64(math.Round((subject.Bathrooms - comp.Bathrooms) * float64(rates.PerBathroom)))
	if subject.YearBuilt != nil && comp.YearBuilt != nil {
		v.Age = int64(*subject.YearBuilt-*comp.YearBuilt) * rates.PerYearOfAge
	}

	for category, amount := range overrides {
		if err := v.Set(category, amount); err != nil {
			return models.AdjustedComp{}, &ValidationError{Field: "overrides", Reason: err.Error()}
		}
	}

	total := v.Total()
	return models.AdjustedComp{
		Comp:            comp,
		Adjustments:     v,
		TotalAdjustment: total,
		AdjustedPrice:   comp.Price + total,
	}, nil
}

// SkippedComp records a comp dropped from a batch along with the reason
// it could not be adjusted.
type SkippedComp struct {
	CompID models.PropertyID `json:"comp_id"`
	Reason string            `json:"reason"`
}

// AdjustComps runs ComputeAdjustment over a selected comp set.
// Overrides are keyed by comp id; comps without an entry get the
// computed defaults. An incomparable comp is skipped and reported
// without aborting the batch.
func AdjustComps(subject models.PropertyRecord, comps []models.PropertyRecord, overrides map[models.PropertyID]models.AdjustmentOverrides, rates RateSchedule) ([]models.AdjustedComp, []SkippedComp, error) {
	if err := ValidateSubject(subject); err != nil {
		return nil, nil, err
	}

	adjusted := make([]models.AdjustedComp, 0, len(comps))
	skipped := make([]SkippedComp, 0)
	for _, comp := range comps {
		ac, err := ComputeAdjustment(subject, comp, overrides[comp.ID], rates)
		if err != nil {
			var incompatible *IncompatibleComparisonError
			if errors.As(err, &incompatible) {
				skipped = append(skipped, SkippedComp{CompID: comp.ID, Reason: incompatible.Reason})
				continue
			}
			return nil, nil, err
		}
		adjusted = append(adjusted, ac)
	}
	return adjusted, skipped, nil
}
