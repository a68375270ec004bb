// Package identity persists the device's identity keys: a random device id
// created once per installation, plus the last session id and role used for
// startup session resumption. Absence of any key means "no resumable
// session".
package identity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/silasdani/bandaid/internal/model"
)

const (
	keyDeviceID  = "device_id"
	keySessionID = "session_id"
	keyRole      = "role"
)

// Store reads and writes device identity keys in the local sqlite store.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// EnsureDeviceID returns the persisted device id, generating and storing a
// fresh one on first use. The id is never rotated.
func (s *Store) EnsureDeviceID() (string, error) {
	id, err := s.get(keyDeviceID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := s.set(keyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}

// Session returns the persisted session id and role, empty when absent.
func (s *Store) Session() (sessionID string, role model.Role, err error) {
	sessionID, err = s.get(keySessionID)
	if err != nil {
		return "", model.RoleNone, err
	}
	r, err := s.get(keyRole)
	if err != nil {
		return "", model.RoleNone, err
	}
	return sessionID, model.Role(r), nil
}

// SaveSession persists the current session id and role.
func (s *Store) SaveSession(sessionID string, role model.Role) error {
	if err := s.set(keySessionID, sessionID); err != nil {
		return err
	}
	return s.set(keyRole, string(role))
}

// ClearSession removes the persisted session keys, keeping the device id.
func (s *Store) ClearSession() error {
	return s.db.Where("key IN ?", []string{keySessionID, keyRole}).
		Delete(&model.DeviceState{}).Error
}

// Reset wipes all identity keys, device id included. Used by logout.
func (s *Store) Reset() error {
	return s.db.Where("1 = 1").Delete(&model.DeviceState{}).Error
}

func (s *Store) get(key string) (string, error) {
	var row model.DeviceState
	err := s.db.Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("identity: read %s: %w", key, err)
	}
	return row.Value, nil
}

func (s *Store) set(key, value string) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.DeviceState{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("identity: write %s: %w", key, err)
	}
	return nil
}
