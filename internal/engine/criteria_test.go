package engine

import (
	"compsage/server/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDefaultCriteria(t *testing.T) {
	tests := []struct {
		name          string
		subject       models.PropertyRecord
		expectedBeds  models.IntBand
		expectedBaths models.FloatBand
		expectedSqFt  models.IntBand
	}{
		{
			name: "Three bed two bath",
			subject: models.PropertyRecord{
				Bedrooms: 3, Bathrooms: 2, SquareFeet: 2200,
				PropertyType: models.TypeSingleFamily,
			},
			expectedBeds:  models.IntBand{Min: 2, Max: 4},
			expectedBaths: models.FloatBand{Min: 1, Max: 3},
			expectedSqFt:  models.IntBand{Min: 1760, Max: 2640},
		},
		{
			name: "One bed floors at one",
			subject: models.PropertyRecord{
				Bedrooms: 1, Bathrooms: 1, SquareFeet: 500,
				PropertyType: models.TypeCondo,
			},
			expectedBeds:  models.IntBand{Min: 1, Max: 2},
			expectedBaths: models.FloatBand{Min: 1, Max: 2},
			expectedSqFt:  models.IntBand{Min: 400, Max: 600},
		},
		{
			name: "Half bathrooms",
			subject: models.PropertyRecord{
				Bedrooms: 4, Bathrooms: 2.5, SquareFeet: 3000,
				PropertyType: models.TypeSingleFamily,
			},
			expectedBeds:  models.IntBand{Min: 3, Max: 5},
			expectedBaths: models.FloatBand{Min: 1, Max: 4},
			expectedSqFt:  models.IntBand{Min: 2400, Max: 3600},
		},
		{
			name: "Studio with zero bedrooms",
			subject: models.PropertyRecord{
				Bedrooms: 0, Bathrooms: 1, SquareFeet: 600,
				PropertyType: models.TypeCondo,
			},
			expectedBeds:  models.IntBand{Min: 1, Max: 1},
			expectedBaths: models.FloatBand{Min: 1, Max: 2},
			expectedSqFt:  models.IntBand{Min: 480, Max: 720},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria, err := DeriveDefaultCriteria(tt.subject)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedBeds, criteria.BedroomBand)
			assert.Equal(t, tt.expectedBaths, criteria.BathroomBand)
			assert.Equal(t, tt.expectedSqFt, criteria.SquareFeetBand)
			assert.Equal(t, DefaultRadiusMiles, criteria.RadiusMiles)
			assert.Equal(t, DefaultRecencyMonths, criteria.RecencyMonths)
			assert.Equal(t, DefaultPriceBandPct, criteria.PriceBandPct)
			assert.Equal(t, DefaultMaxResults, criteria.MaxResults)
			require.NotNil(t, criteria.PropertyType)
			assert.Equal(t, tt.subject.PropertyType, *criteria.PropertyType)
			assert.Empty(t, criteria.Statuses, "derived criteria should match any status")
		})
	}
}

func TestDeriveDefaultCriteriaInvalidSubject(t *testing.T) {
	tests := []struct {
		name          string
		subject       models.PropertyRecord
		expectedField string
	}{
		{
			name: "Zero square feet",
			subject: models.PropertyRecord{
				Bedrooms: 3, Bathrooms: 2, SquareFeet: 0,
				PropertyType: models.TypeSingleFamily,
			},
			expectedField: "square_feet",
		},
		{
			name: "Negative bedrooms",
			subject: models.PropertyRecord{
				Bedrooms: -1, Bathrooms: 2, SquareFeet: 1500,
				PropertyType: models.TypeSingleFamily,
			},
			expectedField: "bedrooms",
		},
		{
			name: "Unknown property type",
			subject: models.PropertyRecord{
				Bedrooms: 2, Bathrooms: 1, SquareFeet: 900,
				PropertyType: models.PropertyType("castle"),
			},
			expectedField: "property_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveDefaultCriteria(tt.subject)
			var subjErr *InvalidSubjectPropertyError
			require.ErrorAs(t, err, &subjErr)
			assert.Equal(t, tt.expectedField, subjErr.Field)
		})
	}
}

func TestValidateCriteria(t *testing.T) {
	valid := models.CompCriteria{
		RadiusMiles:    3,
		BedroomBand:    models.IntBand{Min: 2, Max: 4},
		BathroomBand:   models.FloatBand{Min: 1, Max: 3},
		SquareFeetBand: models.IntBand{Min: 1760, Max: 2640},
		RecencyMonths:  6,
		PriceBandPct:   20,
		MaxResults:     5,
	}

	tests := []struct {
		name          string
		modify        func(c *models.CompCriteria)
		expectedField string
	}{
		{
			name:   "Valid criteria",
			modify: func(c *models.CompCriteria) {},
		},
		{
			name:          "Zero radius",
			modify:        func(c *models.CompCriteria) { c.RadiusMiles = 0 },
			expectedField: "radius_miles",
		},
		{
			name:          "Inverted bedroom band",
			modify:        func(c *models.CompCriteria) { c.BedroomBand = models.IntBand{Min: 4, Max: 2} },
			expectedField: "bedroom_band",
		},
		{
			name:          "Negative bathroom band",
			modify:        func(c *models.CompCriteria) { c.BathroomBand = models.FloatBand{Min: -1, Max: 2} },
			expectedField: "bathroom_band",
		},
		{
			name:          "Inverted square feet band",
			modify:        func(c *models.CompCriteria) { c.SquareFeetBand = models.IntBand{Min: 2000, Max: 1000} },
			expectedField: "square_feet_band",
		},
		{
			name: "Unknown property type",
			modify: func(c *models.CompCriteria) {
				bad := models.PropertyType("bungalow-boat")
				c.PropertyType = &bad
			},
			expectedField: "property_type",
		},
		{
			name: "Unknown status",
			modify: func(c *models.CompCriteria) {
				c.Statuses = []models.ListingStatus{models.StatusSold, models.ListingStatus("withdrawn")}
			},
			expectedField: "statuses",
		},
		{
			name:          "Negative recency",
			modify:        func(c *models.CompCriteria) { c.RecencyMonths = -1 },
			expectedField: "recency_months",
		},
		{
			name:          "Negative price band",
			modify:        func(c *models.CompCriteria) { c.PriceBandPct = -5 },
			expectedField: "price_band_pct",
		},
		{
			name:          "Zero max results",
			modify:        func(c *models.CompCriteria) { c.MaxResults = 0 },
			expectedField: "max_results",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := valid
			tt.modify(&criteria)
			err := ValidateCriteria(criteria)

			if tt.expectedField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.expectedField, vErr.Field)
		})
	}
}
