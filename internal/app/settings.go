package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/talkincode/gomarket/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigManager reads and writes runtime settings rows with a small
// read-through cache. Typed access goes through cast so bad values degrade
// to zero values instead of failing.
type ConfigManager struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache map[string]string
}

func NewConfigManager(db *gorm.DB) *ConfigManager {
	return &ConfigManager{db: db, cache: make(map[string]string)}
}

func (m *ConfigManager) getValue(category, name string) string {
	key := category + "." + name

	m.mu.RLock()
	if v, ok := m.cache[key]; ok {
		m.mu.RUnlock()
		return v
	}
	m.mu.RUnlock()

	var cfg domain.SysConfig
	err := m.db.Where("type = ? and name = ?", category, name).First(&cfg).Error
	if err != nil {
		return ""
	}

	m.mu.Lock()
	m.cache[key] = cfg.Value
	m.mu.Unlock()
	return cfg.Value
}

func (m *ConfigManager) GetString(category, name string) string {
	return m.getValue(category, name)
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.getValue(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.getValue(category, name))
}

// Set updates or creates a settings row and refreshes the cache.
func (m *ConfigManager) Set(category, name, value string) error {
	var cfg domain.SysConfig
	err := m.db.Where("type = ? and name = ?", category, name).First(&cfg).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		err = m.db.Create(&domain.SysConfig{
			Type:      category,
			Name:      name,
			Value:     value,
			UpdatedAt: time.Now(),
		}).Error
	case err == nil:
		err = m.db.Model(&domain.SysConfig{}).
			Where("id = ?", cfg.ID).
			Update("value", value).Error
	}
	if err != nil {
		zap.L().Error("failed to save setting",
			zap.String("category", category),
			zap.String("name", name),
			zap.Error(err))
		return err
	}

	m.mu.Lock()
	m.cache[category+"."+name] = value
	m.mu.Unlock()
	return nil
}
