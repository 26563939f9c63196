package postgres

import (
	"time"

	"github.com/frahmantamala/drawing-management/internal/settings"
	"gorm.io/gorm"
)

// SettingsRepository implements the settings.Repository interface using GORM
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) settings.Repository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(key string) (*settings.SystemSetting, error) {
	var s settings.SystemSetting
	err := r.db.Where("setting_key = ?", key).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, settings.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) GetAll() ([]*settings.SystemSetting, error) {
	var all []*settings.SystemSetting
	err := r.db.Order("setting_key ASC").Find(&all).Error
	return all, err
}

func (r *SettingsRepository) Upsert(key, value string) (*settings.SystemSetting, error) {
	now := time.Now()

	existing, err := r.Get(key)
	if err == settings.ErrNotFound {
		s := &settings.SystemSetting{Key: key, Value: value, UpdatedAt: now}
		if err := r.db.Create(s).Error; err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&settings.SystemSetting{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{"setting_value": value, "updated_at": now}).Error
	if err != nil {
		return nil, err
	}
	return r.Get(key)
}
