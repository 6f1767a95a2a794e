package api

import (
	"compsage/server/config"
	"compsage/server/internal/database"
	"compsage/server/internal/geocoding"
	"compsage/server/internal/geometry"
	"compsage/server/internal/models"
	"compsage/server/internal/queue"
	"compsage/server/internal/telegram"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	db              *database.Database
	logger          *logrus.Logger
	queue           *queue.IngestQueue
	geocoder        *geocoding.Geocoder
	telegramService *telegram.Service
	hulls           *geometry.AreaHullBuilder
	config          *config.Config
	validate        *validator.Validate
}

type PropertyQuery struct {
	City         string `form:"city"`
	PostalPrefix string `form:"postal_prefix"`
	Status       string `form:"status"`
	PropertyType string `form:"property_type"`
	MinPrice     int64  `form:"min_price"`
	MaxPrice     int64  `form:"max_price"`
	Limit        int    `form:"limit"`
}

type ImportRequest struct {
	Properties []models.PropertyRecord `json:"properties" validate:"required,min=1"`
}

func NewHandler(db *database.Database, ingest *queue.IngestQueue, geocoder *geocoding.Geocoder, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	// Initialize the telegram service
	telegramService := telegram.NewService(cfg, logger)
	telegramService.SetDatabase(db)

	return &Handler{
		db:              db,
		logger:          logger,
		queue:           ingest,
		geocoder:        geocoder,
		telegramService: telegramService,
		hulls:           geometry.NewAreaHullBuilder(db.GetDB(), logger),
		config:          cfg,
		validate:        validator.New(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetProperties(c *gin.Context) {
	var query PropertyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Error("Failed to parse property query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	if query.Status != "" && !models.ListingStatus(query.Status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown status %q", query.Status)})
		return
	}
	if query.PropertyType != "" && !models.PropertyType(query.PropertyType).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown property type %q", query.PropertyType)})
		return
	}

	properties, err := h.db.GetProperties(models.PropertyFilter{
		City:         query.City,
		PostalPrefix: query.PostalPrefix,
		Status:       models.ListingStatus(query.Status),
		PropertyType: models.PropertyType(query.PropertyType),
		MinPrice:     query.MinPrice,
		MaxPrice:     query.MaxPrice,
		Limit:        query.Limit,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	if properties == nil {
		properties = []models.PropertyRecord{}
	}
	c.JSON(http.StatusOK, properties)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property id"})
		return
	}

	property, err := h.db.GetProperty(models.PropertyID(id))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// ImportProperties accepts a batch of listing records and queues it for
// the background processor. The response reports queue depth so feed
// clients can pace themselves.
func (h *Handler) ImportProperties(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse import request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one property is required"})
		return
	}

	for i, p := range req.Properties {
		if err := validateImportRecord(i, p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.queue.Push(req.Properties); err != nil {
		h.logger.WithError(err).WithField("batch_size", len(req.Properties)).Error("Failed to queue import batch")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Import queue is not accepting batches, retry later"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":      "queued",
		"batch_size":  len(req.Properties),
		"queue_depth": h.queue.Len(),
	})
}

func validateImportRecord(i int, p models.PropertyRecord) error {
	if p.ID <= 0 {
		return fmt.Errorf("property %d: id is required", i)
	}
	if !p.PropertyType.Valid() {
		return fmt.Errorf("property %d: unknown property type %q", i, p.PropertyType)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("property %d: unknown status %q", i, p.Status)
	}
	if p.Price < 0 {
		return fmt.Errorf("property %d: price must not be negative", i)
	}
	if p.Bedrooms < 0 || p.Bathrooms < 0 || p.SquareFeet < 0 {
		return fmt.Errorf("property %d: bedrooms, bathrooms and square footage must not be negative", i)
	}
	return nil
}

func (h *Handler) GetStats(c *gin.Context) {
	city := c.Query("city")
	stats, err := h.db.GetMarketStats(city)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get market stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get market stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetAreaStats(c *gin.Context) {
	postalPrefix := c.Param("postal_prefix")
	city := c.Query("city")

	stats, err := h.db.GetAreaStats(postalPrefix, city)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get area stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get area stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetAreaBoundary returns a GeoJSON feature enclosing the geocoded
// properties of a postal area. Useful for drawing area outlines on a
// map without shipping the full property list.
func (h *Handler) GetAreaBoundary(c *gin.Context) {
	postalPrefix := c.Param("postal_prefix")
	city := c.Query("city")

	feature, err := h.hulls.BoundaryFeature(postalPrefix, city)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build area boundary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build area boundary"})
		return
	}
	if feature == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not enough coordinates to build a boundary"})
		return
	}

	c.JSON(http.StatusOK, feature)
}

func (h *Handler) GetRecentSales(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10
	}

	city := c.Query("city")
	sales, err := h.db.GetRecentSales(limit, city)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent sales")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent sales"})
		return
	}

	if sales == nil {
		sales = []models.PropertyRecord{}
	}
	c.JSON(http.StatusOK, sales)
}

func (h *Handler) UpdateCoordinates(c *gin.Context) {
	go func() {
		processed, failed, err := h.db.UpdateMissingCoordinates(h.geocoder)
		if err != nil {
			h.logger.WithError(err).Error("Coordinate update failed")
			return
		}
		h.logger.WithFields(logrus.Fields{
			"processed": processed,
			"failed":    failed,
		}).Info("Coordinate update completed")
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status": "Coordinates update process started",
	})
}
