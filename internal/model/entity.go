package model

import "time"

// DeviceState is a device-local key/value row (GORM). It holds the persisted
// identity keys: device id, last session id, last role.
type DeviceState struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (DeviceState) TableName() string { return "device_state" }

// LocalSettings is the single-row device settings document (GORM). The
// settings are stored as one JSON document, written whole on every change.
type LocalSettings struct {
	ID        int       `gorm:"primaryKey"`
	Document  string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (LocalSettings) TableName() string { return "local_settings" }
