package settings

import (
	"errors"
	"time"
)

// KeyAllowedEmailDomains holds a JSON array of corporate domains whose users
// may be registered.
const KeyAllowedEmailDomains = "allowed_email_domains"

// SystemSetting is a single key/value pair of runtime configuration stored in
// the database. Values are JSON encoded.
type SystemSetting struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"column:setting_key;not null"`
	Value     string    `json:"value" gorm:"column:setting_value;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

var (
	ErrNotFound  = errors.New("setting not found")
	ErrForbidden = errors.New("insufficient role to manage settings")
)
