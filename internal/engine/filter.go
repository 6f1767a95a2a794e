package engine

import (
	"compsage/server/internal/geo"
	"compsage/server/internal/models"
	"math"
	"sort"
	"time"
)

// PriceBounds returns the inclusive price window centered on price,
// widened by bandPct percent on each side. Fractional bounds widen
// outward so a comp exactly on the band edge always passes.
func PriceBounds(price int64, bandPct float64) (int64, int64) {
	spread := float64(price) * bandPct / 100
	low := int64(math.Floor(float64(price) - spread))
	high := int64(math.Ceil(float64(price) + spread))
	return low, high
}

// FilterCandidates applies a criteria set to a candidate pool and
// returns the matches ordered by ascending distance from the subject,
// capped at criteria.MaxResults. The pool is treated as a read-only
// snapshot. An empty result is a valid, reportable outcome, not an
// error.
//
// Candidates missing coordinates are never assigned a fabricated
// distance: they pass the radius check with DistanceMiles nil and sort
// after every candidate with a known distance.
func FilterCandidates(pool []models.PropertyRecord, criteria models.CompCriteria, subject models.PropertyRecord, now time.Time) ([]models.CandidateMatch, error) {
	if err := ValidateCriteria(criteria); err != nil {
		return nil, err
	}
	if err := ValidateSubject(subject); err != nil {
		return nil, err
	}

	soldCutoff := now.AddDate(0, -criteria.RecencyMonths, 0)
	minPrice, maxPrice := PriceBounds(subject.Price, criteria.PriceBandPct)

	matches := make([]models.CandidateMatch, 0, len(pool))
	for _, cand := range pool {
		// a stored subject never comps against itself
		if subject.ID != 0 && cand.ID == subject.ID {
			continue
		}
		if criteria.PropertyType != nil && cand.PropertyType != *criteria.PropertyType {
			continue
		}
		if !statusAllowed(cand.Status, criteria.Statuses) {
			continue
		}
		if !criteria.BedroomBand.Contains(cand.Bedrooms) {
			continue
		}
		if !criteria.BathroomBand.Contains(cand.Bathrooms) {
			continue
		}
		if !criteria.SquareFeetBand.Contains(cand.SquareFeet) {
			continue
		}
		dist := distanceFromSubject(subject, cand)
		if dist != nil && *dist > criteria.RadiusMiles {
			continue
		}
		if cand.Status == models.StatusSold && !soldWithinWindow(cand, soldCutoff) {
			continue
		}
		if cand.Price < minPrice || cand.Price > maxPrice {
			continue
		}
		matches = append(matches, models.CandidateMatch{Property: cand, DistanceMiles: dist})
	}

	sortMatches(matches, subject.Price)
	if len(matches) > criteria.MaxResults {
		matches = matches[:criteria.MaxResults]
	}
	return matches, nil
}

func distanceFromSubject(subject, cand models.PropertyRecord) *float64 {
	if !subject.HasCoordinates() || !cand.HasCoordinates() {
		return nil
	}
	d := geo.MilesBetween(*subject.Latitude, *subject.Longitude, *cand.Latitude, *cand.Longitude)
	return &d
}

func statusAllowed(status models.ListingStatus, allowed []models.ListingStatus) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

// soldWithinWindow requires a sold date on or after the cutoff. A sold
// comp without a recorded sold date cannot establish recency and is
// rejected.
func soldWithinWindow(cand models.PropertyRecord, cutoff time.Time) bool {
	return cand.SoldDate != nil && !cand.SoldDate.Before(cutoff)
}

// sortMatches orders by ascending distance, breaking ties by price
// proximity to the subject and then by record id.
func sortMatches(matches []models.CandidateMatch, subjectPrice int64) {
	sort.Slice(matches, func(i, j int) bool {
		di, dj := matches[i].DistanceMiles, matches[j].DistanceMiles
		switch {
		case di != nil && dj != nil && *di != *dj:
			return *di < *dj
		case (di == nil) != (dj == nil):
			return di != nil
		}
		pi := priceGap(matches[i].Property.Price, subjectPrice)
		pj := priceGap(matches[j].Property.Price, subjectPrice)
		if pi != pj {
			return pi < pj
		}
		return matches[i].Property.ID < matches[j].Property.ID
	})
}

func priceGap(price, subjectPrice int64) int64 {
	gap := price - subjectPrice
	if gap < 0 {
		return -gap
	}
	return gap
}
