package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Market represents a supported metropolitan market
type Market struct {
	Name      string    `json:"name"`
	State     string    `json:"state"`
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

// MarketConfig represents the full market registry
type MarketConfig struct {
	Markets []Market `json:"markets"`
}

var (
	marketConfig *MarketConfig
	marketLock   sync.RWMutex
	marketPath   = "config/markets.json"
)

// defaultMarkets seeds the registry when no markets file exists
var defaultMarkets = []Market{
	{
		Name:      "austin",
		State:     "TX",
		Center:    []float64{30.2672, -97.7431},
		ZoomLevel: 11,
	},
	{
		Name:      "dallas",
		State:     "TX",
		Center:    []float64{32.7767, -96.7970},
		ZoomLevel: 11,
	},
	{
		Name:      "houston",
		State:     "TX",
		Center:    []float64{29.7604, -95.3698},
		ZoomLevel: 11,
	},
	{
		Name:      "denver",
		State:     "CO",
		Center:    []float64{39.7392, -104.9903},
		ZoomLevel: 11,
	},
	{
		Name:      "phoenix",
		State:     "AZ",
		Center:    []float64{33.4484, -112.0740},
		ZoomLevel: 11,
	},
	{
		Name:      "atlanta",
		State:     "GA",
		Center:    []float64{33.7490, -84.3880},
		ZoomLevel: 11,
	},
	// Add more markets here as needed
}

// LoadMarketConfig loads the market registry from file, falling back to
// the built-in defaults when no file exists
func LoadMarketConfig() error {
	marketLock.Lock()
	defer marketLock.Unlock()

	// Get absolute path to config file
	absPath, err := filepath.Abs(marketPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	// Read configuration file
	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			marketConfig = &MarketConfig{Markets: append([]Market{}, defaultMarkets...)}
			return nil
		}
		return fmt.Errorf("failed to read config file: %v", err)
	}

	// Parse configuration
	var config MarketConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config: %v", err)
	}

	marketConfig = &config
	return nil
}

// SaveMarketConfig saves the current registry to file
func SaveMarketConfig() error {
	marketLock.Lock()
	defer marketLock.Unlock()
	return saveMarketConfigLocked()
}

func saveMarketConfigLocked() error {
	if marketConfig == nil {
		return fmt.Errorf("no market configuration loaded")
	}

	// Get absolute path to config file
	absPath, err := filepath.Abs(marketPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	// Marshal configuration with pretty printing
	data, err := json.MarshalIndent(marketConfig, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	// Write to file
	if err := os.WriteFile(absPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

// GetMarkets returns all configured markets
func GetMarkets() []Market {
	marketLock.RLock()
	defer marketLock.RUnlock()

	if marketConfig == nil {
		return append([]Market{}, defaultMarkets...)
	}
	return append([]Market{}, marketConfig.Markets...)
}

// GetMarketNames returns a list of configured market names
func GetMarketNames() []string {
	markets := GetMarkets()
	names := make([]string, len(markets))
	for i, market := range markets {
		names[i] = market.Name
	}
	return names
}

// GetMarketByName returns a market configuration by name
func GetMarketByName(name string) *Market {
	normalized := NormalizeMarket(name)
	for _, market := range GetMarkets() {
		if market.Name == normalized {
			return &market
		}
	}
	return nil
}

// UpdateMarket updates or adds a market configuration
func UpdateMarket(market Market) error {
	marketLock.Lock()
	defer marketLock.Unlock()

	if marketConfig == nil {
		marketConfig = &MarketConfig{Markets: append([]Market{}, defaultMarkets...)}
	}

	market.Name = NormalizeMarket(market.Name)

	// Find and update existing market or add new one
	found := false
	for i, existing := range marketConfig.Markets {
		if existing.Name == market.Name {
			marketConfig.Markets[i] = market
			found = true
			break
		}
	}

	if !found {
		marketConfig.Markets = append(marketConfig.Markets, market)
	}

	return saveMarketConfigLocked()
}

// DeleteMarket removes a market configuration
func DeleteMarket(name string) error {
	marketLock.Lock()
	defer marketLock.Unlock()

	if marketConfig == nil {
		return fmt.Errorf("no market configuration loaded")
	}

	normalized := NormalizeMarket(name)
	for i, market := range marketConfig.Markets {
		if market.Name == normalized {
			marketConfig.Markets = append(
				marketConfig.Markets[:i],
				marketConfig.Markets[i+1:]...,
			)
			return saveMarketConfigLocked()
		}
	}

	return fmt.Errorf("market not found: %s", name)
}

// NormalizeMarket converts a market name to its canonical lowercase,
// hyphen-separated form
func NormalizeMarket(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.Join(strings.Fields(normalized), "-")
	return normalized
}
