package engine

import (
	"compsage/server/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAdjustment(t *testing.T) {
	subject := models.PropertyRecord{
		ID: 1, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2200,
		Price: 450000, YearBuilt: ptrInt(2005),
	}
	comp := models.PropertyRecord{
		ID: 7, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2100,
		Price: 435000, YearBuilt: ptrInt(2003),
	}

	ac, err := ComputeAdjustment(subject, comp, nil, DefaultRates())
	require.NoError(t, err)

	assert.Equal(t, int64(10000), ac.Adjustments.SquareFeet)
	assert.Equal(t, int64(0), ac.Adjustments.Bedrooms)
	assert.Equal(t, int64(0), ac.Adjustments.Bathrooms)
	assert.Equal(t, int64(2000), ac.Adjustments.Age)
	assert.Equal(t, int64(0), ac.Adjustments.Garage)
	assert.Equal(t, int64(0), ac.Adjustments.Basement)
	assert.Equal(t, int64(12000), ac.TotalAdjustment)
	assert.Equal(t, int64(447000), ac.AdjustedPrice)
	assert.Equal(t, comp.ID, ac.Comp.ID)
}

func TestComputeAdjustmentDirections(t *testing.T) {
	rates := DefaultRates()

	tests := []struct {
		name     string
		subject  models.PropertyRecord
		comp     models.PropertyRecord
		expected models.AdjustmentVector
	}{
		{
			name:    "Comp larger than subject",
			subject: models.PropertyRecord{Bedrooms: 3, Bathrooms: 2, SquareFeet: 1800},
			comp:    models.PropertyRecord{ID: 2, Bedrooms: 4, Bathrooms: 3, SquareFeet: 2000, Price: 500000},
			expected: models.AdjustmentVector{
				SquareFeet: -20000,
				Bedrooms:   -5000,
				Bathrooms:  -7500,
			},
		},
		{
			name:    "Half bathroom difference",
			subject: models.PropertyRecord{Bedrooms: 3, Bathrooms: 2.5, SquareFeet: 2000},
			comp:    models.PropertyRecord{ID: 3, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2000, Price: 400000},
			expected: models.AdjustmentVector{
				Bathrooms: 3750,
			},
		},
		{
			name:    "Missing year built on comp",
			subject: models.PropertyRecord{Bedrooms: 3, Bathrooms: 2, SquareFeet: 2000, YearBuilt: ptrInt(2010)},
			comp:    models.PropertyRecord{ID: 4, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2000, Price: 400000},
			expected: models.AdjustmentVector{},
		},
		{
			name:    "Missing year built on subject",
			subject: models.PropertyRecord{Bedrooms: 3, Bathrooms: 2, SquareFeet: 2000},
			comp:    models.PropertyRecord{ID: 5, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2000, Price: 400000, YearBuilt: ptrInt(1995)},
			expected: models.AdjustmentVector{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac, err := ComputeAdjustment(tt.subject, tt.comp, nil, rates)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ac.Adjustments)
			assert.Equal(t, tt.expected.Total(), ac.TotalAdjustment)
			assert.Equal(t, tt.comp.Price+tt.expected.Total(), ac.AdjustedPrice)
		})
	}
}

func TestComputeAdjustmentOverridePrecedence(t *testing.T) {
	subject := models.PropertyRecord{
		Bedrooms: 3, Bathrooms: 2, SquareFeet: 2200, YearBuilt: ptrInt(2005),
	}
	comp := models.PropertyRecord{
		ID: 7, Bedrooms: 2, Bathrooms: 2, SquareFeet: 2100,
		Price: 435000, YearBuilt: ptrInt(2003),
	}

	overrides := models.AdjustmentOverrides{
		models.CategoryBedrooms: 9999,
		models.CategoryLocation: -15000,
	}
	ac, err := ComputeAdjustment(subject, comp, overrides, DefaultRates())
	require.NoError(t, err)

	// the computed bedroom delta would be 5000; the override wins verbatim
	assert.Equal(t, int64(9999), ac.Adjustments.Bedrooms)
	assert.Equal(t, int64(-15000), ac.Adjustments.Location)
	assert.Equal(t, int64(10000), ac.Adjustments.SquareFeet)
	assert.Equal(t, int64(2000), ac.Adjustments.Age)
	assert.Equal(t, int64(10000+9999+2000-15000), ac.TotalAdjustment)
	assert.Equal(t, comp.Price+ac.TotalAdjustment, ac.AdjustedPrice)
}

func TestComputeAdjustmentZeroOverridesMatchEmpty(t *testing.T) {
	subject := models.PropertyRecord{
		Bedrooms: 3, Bathrooms: 2, SquareFeet: 2200, YearBuilt: ptrInt(2005),
	}
	comp := models.PropertyRecord{
		ID: 7, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2100,
		Price: 435000, YearBuilt: ptrInt(2003),
	}

	zeroManual := models.AdjustmentOverrides{
		models.CategoryGarage:    0,
		models.CategoryBasement:  0,
		models.CategoryLocation:  0,
		models.CategoryCondition: 0,
		models.CategoryOther:     0,
	}

	plain, err := ComputeAdjustment(subject, comp, nil, DefaultRates())
	require.NoError(t, err)
	zeroed, err := ComputeAdjustment(subject, comp, zeroManual, DefaultRates())
	require.NoError(t, err)

	assert.Equal(t, plain.Adjustments, zeroed.Adjustments)
	assert.Equal(t, plain.AdjustedPrice, zeroed.AdjustedPrice)
}

func TestComputeAdjustmentIncompatibleComp(t *testing.T) {
	subject := models.PropertyRecord{Bedrooms: 3, Bathrooms: 2, SquareFeet: 2200}
	comp := models.PropertyRecord{ID: 42, Bedrooms: 3, Bathrooms: 2, SquareFeet: 0, Price: 400000}

	_, err := ComputeAdjustment(subject, comp, nil, DefaultRates())
	var incErr *IncompatibleComparisonError
	require.ErrorAs(t, err, &incErr)
	assert.Equal(t, models.PropertyID(42), incErr.CompID)
}

func TestComputeAdjustmentUnknownOverrideCategory(t *testing.T) {
	subject := models.PropertyRecord{Bedrooms: 3, Bathrooms: 2, SquareFeet: 2200}
	comp := models.PropertyRecord{ID: 7, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2100, Price: 435000}

	overrides := models.AdjustmentOverrides{
		models.AdjustmentCategory("granite_counters"): 5000,
	}
	_, err := ComputeAdjustment(subject, comp, overrides, DefaultRates())
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "overrides", vErr.Field)
}

func TestAdjustComps(t *testing.T) {
	subject := models.PropertyRecord{
		ID: 1, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2200,
		Price: 450000, YearBuilt: ptrInt(2005),
	}
	good := models.PropertyRecord{
		ID: 7, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2100,
		Price: 435000, YearBuilt: ptrInt(2003),
	}
	broken := models.PropertyRecord{
		ID: 8, Bedrooms: 3, Bathrooms: 2, SquareFeet: 0, Price: 410000,
	}
	overridden := models.PropertyRecord{
		ID: 9, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2200, Price: 440000,
	}

	overrides := map[models.PropertyID]models.AdjustmentOverrides{
		overridden.ID: {models.CategoryCondition: 12000},
	}

	adjusted, skipped, err := AdjustComps(subject, []models.PropertyRecord{good, broken, overridden}, overrides, DefaultRates())
	require.NoError(t, err)

	require.Len(t, adjusted, 2)
	assert.Equal(t, int64(447000), adjusted[0].AdjustedPrice)
	assert.Equal(t, int64(12000), adjusted[1].Adjustments.Condition)
	assert.Equal(t, int64(452000), adjusted[1].AdjustedPrice)

	// the incomparable comp is reported, not fatal
	require.Len(t, skipped, 1)
	assert.Equal(t, models.PropertyID(8), skipped[0].CompID)
	assert.NotEmpty(t, skipped[0].Reason)
}

func TestAdjustCompsInvalidSubject(t *testing.T) {
	subject := models.PropertyRecord{ID: 1, Bedrooms: 3, Bathrooms: 2, SquareFeet: 0}
	comp := models.PropertyRecord{ID: 7, Bedrooms: 3, Bathrooms: 2, SquareFeet: 2100, Price: 435000}

	_, _, err := AdjustComps(subject, []models.PropertyRecord{comp}, nil, DefaultRates())
	var subjErr *InvalidSubjectPropertyError
	require.ErrorAs(t, err, &subjErr)
	assert.Equal(t, "square_feet", subjErr.Field)
}
