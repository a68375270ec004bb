// Package settings manages the device-local default tile set and global
// presentation preferences, persisted as one JSON document in the local
// sqlite store. Session-scoped tiles are handled by the session controller;
// this store covers the device before any session exists.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/silasdani/bandaid/internal/errs"
	"github.com/silasdani/bandaid/internal/model"
)

// Store holds the cached settings document and writes it back whole on
// every mutation. One row, one JSON blob; mutations are rare.
type Store struct {
	db *gorm.DB

	mu       sync.Mutex
	settings model.AppSettings
}

// NewStore loads the persisted settings, falling back to defaults when the
// document is absent or unreadable.
func NewStore(db *gorm.DB) (*Store, error) {
	s := &Store{db: db, settings: model.DefaultAppSettings()}
	var row model.LocalSettings
	err := db.Where("id = ?", 1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: load: %w", err)
	}
	var loaded model.AppSettings
	if err := json.Unmarshal([]byte(row.Document), &loaded); err != nil {
		return nil, fmt.Errorf("settings: decode: %w", err)
	}
	s.settings = loaded
	return s, nil
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() model.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// AddTile appends a tile, assigning a creation-time id, and returns it.
func (s *Store) AddTile(tile model.TileConfig) (model.TileConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tile.ID = model.NewTileID()
	s.settings.Tiles = append(s.settings.Tiles, tile)
	return tile, s.saveLocked()
}

// UpdateTile applies a partial update to the tile with the given id.
func (s *Store) UpdateTile(id string, update model.TileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.settings.Tiles {
		if s.settings.Tiles[i].ID == id {
			update.Apply(&s.settings.Tiles[i])
			return s.saveLocked()
		}
	}
	return errs.ErrTileNotFound
}

// RemoveTile deletes the tile with the given id. Remaining tiles keep their
// ids; there is no renumbering.
func (s *Store) RemoveTile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tiles := s.settings.Tiles[:0]
	found := false
	for _, t := range s.settings.Tiles {
		if t.ID == id {
			found = true
			continue
		}
		tiles = append(tiles, t)
	}
	if !found {
		return errs.ErrTileNotFound
	}
	s.settings.Tiles = tiles
	return s.saveLocked()
}

// ActiveTiles returns the tiles marked active, in list order.
func (s *Store) ActiveTiles() []model.TileConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TileConfig
	for _, t := range s.settings.Tiles {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out
}

// UpdateGlobal sets the global presentation preferences.
func (s *Store) UpdateGlobal(textSize int, fontWeight, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if textSize > 0 {
		s.settings.GlobalTextSize = textSize
	}
	if fontWeight != "" {
		s.settings.GlobalFontWeight = fontWeight
	}
	if theme != "" {
		s.settings.Theme = theme
	}
	return s.saveLocked()
}

// ResetToDefaults restores the factory settings document.
func (s *Store) ResetToDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = model.DefaultAppSettings()
	return s.saveLocked()
}

func (s *Store) copyLocked() model.AppSettings {
	out := s.settings
	out.Tiles = append([]model.TileConfig(nil), s.settings.Tiles...)
	return out
}

func (s *Store) saveLocked() error {
	doc, err := json.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&model.LocalSettings{ID: 1, Document: string(doc)}).Error
	if err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}
