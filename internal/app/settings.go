package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bwops/metastack/internal/domain"
)

const settingsCacheTTL = 30 * time.Second

// SettingsManager reads runtime-tunable settings from sys_config with a
// short-lived cache.
type SettingsManager struct {
	db *gorm.DB

	mu       sync.RWMutex
	cache    map[string]string
	cachedAt time.Time
}

func NewSettingsManager(db *gorm.DB) *SettingsManager {
	return &SettingsManager{db: db, cache: make(map[string]string)}
}

func (m *SettingsManager) load() map[string]string {
	m.mu.RLock()
	if time.Since(m.cachedAt) < settingsCacheTTL {
		defer m.mu.RUnlock()
		return m.cache
	}
	m.mu.RUnlock()

	var rows []domain.SysConfig
	if err := m.db.Find(&rows).Error; err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		return m.cache
	}

	fresh := make(map[string]string, len(rows))
	for _, r := range rows {
		fresh[r.Type+"."+r.Name] = r.Value
	}

	m.mu.Lock()
	m.cache = fresh
	m.cachedAt = time.Now()
	m.mu.Unlock()
	return fresh
}

func (m *SettingsManager) GetString(category, name string) string {
	return m.load()[category+"."+name]
}

func (m *SettingsManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *SettingsManager) GetInt(category, name string) int {
	return cast.ToInt(m.GetString(category, name))
}

func (m *SettingsManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// SmtpSettings is the mail relay configuration kept in sys_config.
type SmtpSettings struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	User   string `mapstructure:"user"`
	Passwd string `mapstructure:"passwd"`
	From   string `mapstructure:"from"`
	To     string `mapstructure:"to"`
}

// Smtp decodes the smtp category into a typed struct.
func (m *SettingsManager) Smtp() (SmtpSettings, error) {
	raw := map[string]interface{}{}
	for k, v := range m.load() {
		if len(k) > 5 && k[:5] == "smtp." {
			raw[k[5:]] = v
		}
	}
	var out SmtpSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	return out, decoder.Decode(raw)
}

// Save upserts a batch of "category.name" -> value pairs.
func (m *SettingsManager) Save(settings map[string]interface{}) error {
	for key, value := range settings {
		category, name, ok := splitKey(key)
		if !ok {
			return fmt.Errorf("invalid settings key %q, want category.name", key)
		}
		strVal := cast.ToString(value)

		var row domain.SysConfig
		err := m.db.Where("type = ? AND name = ?", category, name).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := m.db.Create(&domain.SysConfig{
				Type:      category,
				Name:      name,
				Value:     strVal,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := m.db.Model(&domain.SysConfig{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
				"value":      strVal,
				"updated_at": time.Now(),
			}).Error; err != nil {
				return err
			}
		}
	}

	m.mu.Lock()
	m.cachedAt = time.Time{} // force reload
	m.mu.Unlock()
	return nil
}

func splitKey(key string) (category, name string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			if i == 0 || i == len(key)-1 {
				return "", "", false
			}
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}
