package config

import (
	"compsage/server/internal/engine"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	rateSchedule = engine.DefaultRates()
	rateLock     sync.RWMutex
)

// LoadRateSchedule replaces the default adjustment rates with the
// contents of a JSON rate file. An empty path keeps the defaults; keys
// absent from the file keep their default value.
func LoadRateSchedule(path string) error {
	if path == "" {
		return nil
	}

	// Get absolute path to rate file
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	// Read rate file
	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read rate file: %v", err)
	}

	// Parse on top of the defaults
	schedule := engine.DefaultRates()
	if err := json.Unmarshal(data, &schedule); err != nil {
		return fmt.Errorf("failed to parse rate file: %v", err)
	}

	if schedule.PerSquareFoot < 0 || schedule.PerBedroom < 0 ||
		schedule.PerBathroom < 0 || schedule.PerYearOfAge < 0 {
		return fmt.Errorf("adjustment rates must not be negative")
	}

	rateLock.Lock()
	rateSchedule = schedule
	rateLock.Unlock()
	return nil
}

// GetRateSchedule returns the active adjustment rate schedule
func GetRateSchedule() engine.RateSchedule {
	rateLock.RLock()
	defer rateLock.RUnlock()
	return rateSchedule
}
