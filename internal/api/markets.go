package api

import (
	"compsage/server/config"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MarketHandler struct {
	logger *logrus.Logger
}

func NewMarketHandler(logger *logrus.Logger) *MarketHandler {
	return &MarketHandler{logger: logger}
}

// SetupMarketRoutes adds market registry routes to the router
func SetupMarketRoutes(router *gin.Engine, logger *logrus.Logger) {
	handler := NewMarketHandler(logger)

	router.GET("/api/markets", handler.ListMarkets)
	router.POST("/api/markets", handler.CreateMarket)
	router.GET("/api/markets/:name", handler.GetMarket)
	router.PUT("/api/markets/:name", handler.UpdateMarket)
	router.DELETE("/api/markets/:name", handler.DeleteMarket)
}

// ListMarkets returns all configured markets
func (h *MarketHandler) ListMarkets(c *gin.Context) {
	c.JSON(http.StatusOK, config.GetMarkets())
}

// GetMarket returns a specific market
func (h *MarketHandler) GetMarket(c *gin.Context) {
	market := config.GetMarketByName(c.Param("name"))
	if market == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Market not found"})
		return
	}
	c.JSON(http.StatusOK, market)
}

// CreateMarket creates or replaces a market
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	var market config.Market
	if err := c.ShouldBindJSON(&market); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	market.Name = config.NormalizeMarket(market.Name)
	if market.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A market name is required"})
		return
	}
	if len(market.Center) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Center must be [latitude, longitude]"})
		return
	}

	if err := config.UpdateMarket(market); err != nil {
		h.logger.WithError(err).Error("Failed to save market")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, market)
}

// UpdateMarket updates an existing market
func (h *MarketHandler) UpdateMarket(c *gin.Context) {
	name := c.Param("name")
	var market config.Market
	if err := c.ShouldBindJSON(&market); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Ensure the name in the URL matches the name in the body
	if config.NormalizeMarket(market.Name) != config.NormalizeMarket(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name in URL does not match name in body"})
		return
	}
	if len(market.Center) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Center must be [latitude, longitude]"})
		return
	}

	market.Name = config.NormalizeMarket(market.Name)
	if err := config.UpdateMarket(market); err != nil {
		h.logger.WithError(err).Error("Failed to save market")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, market)
}

// DeleteMarket deletes a market
func (h *MarketHandler) DeleteMarket(c *gin.Context) {
	name := c.Param("name")
	if config.GetMarketByName(name) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Market not found"})
		return
	}

	if err := config.DeleteMarket(name); err != nil {
		h.logger.WithError(err).Error("Failed to delete market")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
