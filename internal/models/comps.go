package models

import "fmt"

type IntBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (b IntBand) Contains(v int) bool { return v >= b.Min && v <= b.Max }

type FloatBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (b FloatBand) Contains(v float64) bool { return v >= b.Min && v <= b.Max }

// CompCriteria is the search envelope used to select comparable
// properties for a subject. A nil PropertyType matches any type and an
// empty Statuses slice matches any status.
type CompCriteria struct {
	RadiusMiles    float64         `json:"radius_miles"`
	BedroomBand    IntBand         `json:"bedroom_band"`
	BathroomBand   FloatBand       `json:"bathroom_band"`
	SquareFeetBand IntBand         `json:"square_feet_band"`
	PropertyType   *PropertyType   `json:"property_type,omitempty"`
	Statuses       []ListingStatus `json:"statuses,omitempty"`
	RecencyMonths  int             `json:"recency_months"`
	PriceBandPct   float64         `json:"price_band_pct"`
	MaxResults     int             `json:"max_results"`
}

type AdjustmentCategory string

const (
	CategoryBedrooms   AdjustmentCategory = "bedrooms"
	CategoryBathrooms  AdjustmentCategory = "bathrooms"
	CategorySquareFeet AdjustmentCategory = "square_feet"
	CategoryAge        AdjustmentCategory = "age"
	CategoryGarage     AdjustmentCategory = "garage"
	CategoryBasement   AdjustmentCategory = "basement"
	CategoryLocation   AdjustmentCategory = "location"
	CategoryCondition  AdjustmentCategory = "condition"
	CategoryOther      AdjustmentCategory = "other"
)

func AdjustmentCategories() []AdjustmentCategory {
	return []AdjustmentCategory{
		CategoryBedrooms,
		CategoryBathrooms,
		CategorySquareFeet,
		CategoryAge,
		CategoryGarage,
		CategoryBasement,
		CategoryLocation,
		CategoryCondition,
		CategoryOther,
	}
}

func (c AdjustmentCategory) Valid() bool {
	switch c {
	case CategoryBedrooms, CategoryBathrooms, CategorySquareFeet, CategoryAge,
		CategoryGarage, CategoryBasement, CategoryLocation, CategoryCondition, CategoryOther:
		return true
	}
	return false
}

// AdjustmentVector holds the dollar adjustment per category applied to a
// comp's price. Positive amounts mean the subject is superior to the comp.
// The shape is fixed: every category is always present, zero when inert.
type AdjustmentVector struct {
	Bedrooms   int64 `json:"bedrooms"`
	Bathrooms  int64 `json:"bathrooms"`
	SquareFeet int64 `json:"square_feet"`
	Age        int64 `json:"age"`
	Garage     int64 `json:"garage"`
	Basement   int64 `json:"basement"`
	Location   int64 `json:"location"`
	Condition  int64 `json:"condition"`
	Other      int64 `json:"other"`
}

func (v AdjustmentVector) Total() int64 {
	return v.Bedrooms + v.Bathrooms + v.SquareFeet + v.Age +
		v.Garage + v.Basement + v.Location + v.Condition + v.Other
}

func (v AdjustmentVector) Get(c AdjustmentCategory) int64 {
	switch c {
	case CategoryBedrooms:
		return v.Bedrooms
	case CategoryBathrooms:
		return v.Bathrooms
	case CategorySquareFeet:
		return v.SquareFeet
	case CategoryAge:
		return v.Age
	case CategoryGarage:
		return v.Garage
	case CategoryBasement:
		return v.Basement
	case CategoryLocation:
		return v.Location
	case CategoryCondition:
		return v.Condition
	case CategoryOther:
		return v.Other
	}
	return 0
}

func (v *AdjustmentVector) Set(c AdjustmentCategory, amount int64) error {
	switch c {
	case CategoryBedrooms:
		v.Bedrooms = amount
	case CategoryBathrooms:
		v.Bathrooms = amount
	case CategorySquareFeet:
		v.SquareFeet = amount
	case CategoryAge:
		v.Age = amount
	case CategoryGarage:
		v.Garage = amount
	case CategoryBasement:
		v.Basement = amount
	case CategoryLocation:
		v.Location = amount
	case CategoryCondition:
		v.Condition = amount
	case CategoryOther:
		v.Other = amount
	default:
		return fmt.Errorf("unknown adjustment category %q", string(c))
	}
	return nil
}

// AdjustmentOverrides maps categories to caller-supplied dollar amounts
// that replace the computed value for that category.
type AdjustmentOverrides map[AdjustmentCategory]int64

// CandidateMatch pairs a filtered candidate with its distance from the
// subject. DistanceMiles is nil when either side lacks coordinates; a
// distance is never fabricated.
type CandidateMatch struct {
	Property      PropertyRecord `json:"property"`
	DistanceMiles *float64       `json:"distance_miles"`
}

type AdjustedComp struct {
	Comp            PropertyRecord   `json:"comp"`
	Adjustments     AdjustmentVector `json:"adjustments"`
	TotalAdjustment int64            `json:"total_adjustment"`
	AdjustedPrice   int64            `json:"adjusted_price"`
}

type ValuationSummary struct {
	MinAdjustedPrice    int64 `json:"min_adjusted_price"`
	MaxAdjustedPrice    int64 `json:"max_adjusted_price"`
	MedianAdjustedPrice int64 `json:"median_adjusted_price"`
	EstimatedValue      int64 `json:"estimated_value"`
	SampleSize          int   `json:"sample_size"`
}
