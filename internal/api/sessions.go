package api

import (
	"compsage/server/internal/models"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SessionRequest struct {
	SubjectID   int64            `json:"subject_id" validate:"required,gt=0"`
	CompID      int64            `json:"comp_id" validate:"required,gt=0"`
	Adjustments map[string]int64 `json:"adjustments"`
	Notes       string           `json:"notes"`
}

// SaveSession persists an analyst worksheet for one subject/comp pair.
// The adjusted price is recomputed from the comp's current price, and a
// repeated save for the same pair replaces the stored amounts.
func (h *Handler) SaveSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A subject_id and comp_id are required"})
		return
	}
	if req.SubjectID == req.CompID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A property cannot be compared against itself"})
		return
	}

	subject, err := h.db.GetProperty(models.PropertyID(req.SubjectID))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get subject property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get subject property"})
		return
	}
	if subject == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject property not found"})
		return
	}

	comp, err := h.db.GetProperty(models.PropertyID(req.CompID))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get comp property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comp property"})
		return
	}
	if comp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comp property not found"})
		return
	}

	var vector models.AdjustmentVector
	for category, amount := range req.Adjustments {
		if err := vector.Set(models.AdjustmentCategory(category), amount); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	saved, err := h.db.SaveSession(models.AdjustmentSession{
		SubjectID:     models.PropertyID(req.SubjectID),
		CompID:        models.PropertyID(req.CompID),
		Adjustments:   vector,
		AdjustedPrice: comp.Price + vector.Total(),
		Notes:         req.Notes,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	// Notify about the saved worksheet without blocking the response
	go func() {
		if err := h.telegramService.NotifySessionSaved(saved, *subject, *comp); err != nil {
			h.logger.WithError(err).Error("Failed to send session notification")
		}
	}()

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.db.GetSession(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get session"})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handler) GetSessions(c *gin.Context) {
	subjectIDStr := c.Query("subject_id")
	if subjectIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A subject_id query parameter is required"})
		return
	}
	subjectID, err := strconv.ParseInt(subjectIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject_id"})
		return
	}

	sessions, err := h.db.GetSessionsBySubject(models.PropertyID(subjectID))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sessions"})
		return
	}

	if sessions == nil {
		sessions = []models.AdjustmentSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	id := c.Param("id")

	session, err := h.db.GetSession(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get session"})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := h.db.DeleteSession(id); err != nil {
		h.logger.WithError(err).Error("Failed to delete session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}

	c.Status(http.StatusNoContent)
}
