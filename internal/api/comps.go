package api

import (
	"compsage/server/config"
	"compsage/server/internal/engine"
	"compsage/server/internal/models"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CriteriaPatch overrides individual fields of the derived search
// envelope. Nil fields keep the derived default. An empty property_type
// string widens the search to any type.
type CriteriaPatch struct {
	RadiusMiles    *float64               `json:"radius_miles" validate:"omitempty,gt=0"`
	BedroomBand    *models.IntBand        `json:"bedroom_band"`
	BathroomBand   *models.FloatBand      `json:"bathroom_band"`
	SquareFeetBand *models.IntBand        `json:"square_feet_band"`
	PropertyType   *models.PropertyType   `json:"property_type"`
	Statuses       []models.ListingStatus `json:"statuses"`
	RecencyMonths  *int                   `json:"recency_months" validate:"omitempty,gte=0"`
	PriceBandPct   *float64               `json:"price_band_pct" validate:"omitempty,gte=0"`
	MaxResults     *int                   `json:"max_results" validate:"omitempty,gte=1"`
}

type SearchRequest struct {
	SubjectID *int64                 `json:"subject_id"`
	Subject   *models.PropertyRecord `json:"subject"`
	Criteria  *CriteriaPatch         `json:"criteria"`
}

type AdjustRequest struct {
	SubjectID *int64                      `json:"subject_id"`
	Subject   *models.PropertyRecord      `json:"subject"`
	CompIDs   []int64                     `json:"comp_ids" validate:"required,min=1"`
	Overrides map[string]map[string]int64 `json:"overrides"`
}

// resolveSubject loads the subject either by id or from an inline
// record. It writes its own error response and reports success through
// the second return value.
func (h *Handler) resolveSubject(c *gin.Context, subjectID *int64, inline *models.PropertyRecord) (models.PropertyRecord, bool) {
	if subjectID != nil && inline != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide either subject_id or subject, not both"})
		return models.PropertyRecord{}, false
	}

	if subjectID != nil {
		property, err := h.db.GetProperty(models.PropertyID(*subjectID))
		if err != nil {
			h.logger.WithError(err).Error("Failed to get subject property")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get subject property"})
			return models.PropertyRecord{}, false
		}
		if property == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subject property not found"})
			return models.PropertyRecord{}, false
		}
		return *property, true
	}

	if inline != nil {
		return *inline, true
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "A subject_id or inline subject is required"})
	return models.PropertyRecord{}, false
}

// SearchComps derives criteria from the subject, applies any caller
// patch and returns the filtered candidate matches together with the
// effective criteria.
func (h *Handler) SearchComps(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subject, ok := h.resolveSubject(c, req.SubjectID, req.Subject)
	if !ok {
		return
	}

	criteria, err := engine.DeriveDefaultCriteria(subject)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	applyCriteriaPatch(&criteria, req.Criteria)
	if err := engine.ValidateCriteria(criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := h.db.GetCandidatePool(subject, criteria, h.config.Engine.PoolLimit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load candidate pool")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load candidate pool"})
		return
	}

	matches, err := engine.FilterCandidates(pool, criteria, subject, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{
		"criteria": criteria,
		"matches":  matches,
	}
	if len(matches) == 0 {
		response["reason"] = "no_matches"
	}

	c.JSON(http.StatusOK, response)
}

// AdjustComps prices the differences between the subject and each
// selected comp. Comps that cannot be loaded or compared are reported
// as skipped instead of failing the batch.
func (h *Handler) AdjustComps(c *gin.Context) {
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one comp id is required"})
		return
	}

	subject, ok := h.resolveSubject(c, req.SubjectID, req.Subject)
	if !ok {
		return
	}

	overrides, err := parseOverrides(req.Overrides)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comps := make([]models.PropertyRecord, 0, len(req.CompIDs))
	skipped := make([]engine.SkippedComp, 0)
	for _, id := range req.CompIDs {
		comp, err := h.db.GetProperty(models.PropertyID(id))
		if err != nil {
			h.logger.WithError(err).Error("Failed to get comp property")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comp property"})
			return
		}
		if comp == nil {
			skipped = append(skipped, engine.SkippedComp{CompID: models.PropertyID(id), Reason: "not found"})
			continue
		}
		comps = append(comps, *comp)
	}

	adjusted, engineSkipped, err := engine.AdjustComps(subject, comps, overrides, config.GetRateSchedule())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	skipped = append(skipped, engineSkipped...)

	response := gin.H{
		"comps":   adjusted,
		"skipped": skipped,
	}
	summary, err := engine.Summarize(adjusted)
	if err != nil {
		if !errors.Is(err, engine.ErrEmptyComparisonSet) {
			h.logger.WithError(err).Error("Failed to summarize adjusted comps")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize adjusted comps"})
			return
		}
		response["summary_unavailable_reason"] = "empty comparison set"
	} else {
		response["summary"] = summary
	}

	c.JSON(http.StatusOK, response)
}

func applyCriteriaPatch(criteria *models.CompCriteria, patch *CriteriaPatch) {
	if patch == nil {
		return
	}
	if patch.RadiusMiles != nil {
		criteria.RadiusMiles = *patch.RadiusMiles
	}
	if patch.BedroomBand != nil {
		criteria.BedroomBand = *patch.BedroomBand
	}
	if patch.BathroomBand != nil {
		criteria.BathroomBand = *patch.BathroomBand
	}
	if patch.SquareFeetBand != nil {
		criteria.SquareFeetBand = *patch.SquareFeetBand
	}
	if patch.PropertyType != nil {
		if *patch.PropertyType == "" {
			criteria.PropertyType = nil
		} else {
			criteria.PropertyType = patch.PropertyType
		}
	}
	if patch.Statuses != nil {
		criteria.Statuses = patch.Statuses
	}
	if patch.RecencyMonths != nil {
		criteria.RecencyMonths = *patch.RecencyMonths
	}
	if patch.PriceBandPct != nil {
		criteria.PriceBandPct = *patch.PriceBandPct
	}
	if patch.MaxResults != nil {
		criteria.MaxResults = *patch.MaxResults
	}
}

func parseOverrides(raw map[string]map[string]int64) (map[models.PropertyID]models.AdjustmentOverrides, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	overrides := make(map[models.PropertyID]models.AdjustmentOverrides, len(raw))
	for key, amounts := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("overrides key %q is not a comp id", key)
		}
		byCategory := make(models.AdjustmentOverrides, len(amounts))
		for category, amount := range amounts {
			byCategory[models.AdjustmentCategory(category)] = amount
		}
		overrides[models.PropertyID(id)] = byCategory
	}
	return overrides, nil
}
