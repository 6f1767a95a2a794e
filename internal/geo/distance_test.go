package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilesBetween(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		expected               float64
		delta                  float64
	}{
		{
			name: "same point",
			lat1: 30.2672, lng1: -97.7431,
			lat2: 30.2672, lng2: -97.7431,
			expected: 0,
			delta:    0.0001,
		},
		{
			name: "one degree of latitude",
			lat1: 30.0, lng1: -97.0,
			lat2: 31.0, lng2: -97.0,
			expected: 69.2,
			delta:    0.3,
		},
		{
			name: "downtown austin to round rock",
			lat1: 30.2672, lng1: -97.7431,
			lat2: 30.5083, lng2: -97.6789,
			expected: 17.1,
			delta:    0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MilesBetween(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.expected, got, tt.delta)
		})
	}
}

func TestMilesBetweenSymmetric(t *testing.T) {
	a := MilesBetween(30.2672, -97.7431, 32.7767, -96.7970)
	b := MilesBetween(32.7767, -96.7970, 30.2672, -97.7431)
	assert.InDelta(t, a, b, 0.0001)
}

func TestCellPrefixes(t *testing.T) {
	tests := []struct {
		name        string
		radiusMiles float64
		wantLen     int
	}{
		{name: "sub-half-mile radius", radiusMiles: 0.25, wantLen: 6},
		{name: "default three mile radius", radiusMiles: 3.0, wantLen: 5},
		{name: "city-scale radius", radiusMiles: 50.0, wantLen: 3},
		{name: "continental radius", radiusMiles: 4000.0, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefixes := CellPrefixes(30.2672, -97.7431, tt.radiusMiles)
			assert.Len(t, prefixes, 9)
			seen := make(map[string]bool)
			for _, p := range prefixes {
				assert.Len(t, p, tt.wantLen)
				seen[p] = true
			}
			assert.Len(t, seen, 9, "prefixes should be distinct")
		})
	}
}

func TestCellPrefixesCoverCenter(t *testing.T) {
	prefixes := CellPrefixes(30.2672, -97.7431, 3.0)
	full := EncodeCell(30.2672, -97.7431)
	found := false
	for _, p := range prefixes {
		if len(p) <= len(full) && full[:len(p)] == p {
			found = true
		}
	}
	assert.True(t, found, "full-precision hash should start with one of the prefixes")
}
