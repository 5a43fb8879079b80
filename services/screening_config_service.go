package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"audio-screening-api/config"
	"audio-screening-api/models"
)

var (
	screeningCfgMu  sync.RWMutex
	screeningCfg    *screeningCfgEntry
	screeningCfgTTL = 5 * time.Minute
)

type screeningCfgEntry struct {
	cfg       models.ScreeningConfig
	fetchedAt time.Time
}

func loadScreeningConfig(force bool) (models.ScreeningConfig, error) {
	screeningCfgMu.RLock()
	cached := screeningCfg
	screeningCfgMu.RUnlock()

	if cached != nil && !force && time.Since(cached.fetchedAt) < screeningCfgTTL {
		return cached.cfg, nil
	}

	screeningCfgMu.Lock()
	defer screeningCfgMu.Unlock()

	if screeningCfg != nil && !force && time.Since(screeningCfg.fetchedAt) < screeningCfgTTL {
		return screeningCfg.cfg, nil
	}

	var row models.ScreeningConfig
	err := config.DB.Where("config_id = ?", 1).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No row yet: run on defaults rather than blocking all scoring.
		log.Println("screening config row missing, using defaults")
		row = models.DefaultScreeningConfig()
	} else if err != nil {
		return models.ScreeningConfig{}, fmt.Errorf("failed to load screening config: %w", err)
	}

	// Fail safe: malformed tiers collapse to lowest confidence, never full.
	row.Normalize()

	screeningCfg = &screeningCfgEntry{cfg: row, fetchedAt: time.Now()}
	return row, nil
}

// GetScreeningConfig returns the normalized singleton config, cached with a
// short TTL.
func GetScreeningConfig() (models.ScreeningConfig, error) {
	return loadScreeningConfig(false)
}

// ClearScreeningConfigCache invalidates the cached config after an update.
func ClearScreeningConfigCache() {
	screeningCfgMu.Lock()
	defer screeningCfgMu.Unlock()
	screeningCfg = nil
}

// SaveScreeningConfig persists the singleton row and refreshes the cache.
func SaveScreeningConfig(cfg models.ScreeningConfig) (models.ScreeningConfig, error) {
	cfg.ConfigID = 1
	cfg.Normalize()
	now := time.Now()
	cfg.UpdateAt = &now

	if err := config.DB.Save(&cfg).Error; err != nil {
		return models.ScreeningConfig{}, fmt.Errorf("failed to save screening config: %w", err)
	}

	ClearScreeningConfigCache()
	return cfg, nil
}
