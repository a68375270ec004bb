package settings

import (
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/silasdani/bandaid/internal/database"
	"github.com/silasdani/bandaid/internal/errs"
	"github.com/silasdani/bandaid/internal/model"
)

func openTestDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.db")
	if err := database.MigrateUp(path); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return db, path
}

func TestFreshInstallGetsDefaults(t *testing.T) {
	db, _ := openTestDB(t)
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	got := s.Settings()
	if len(got.Tiles) != 8 {
		t.Errorf("tiles: got %d, want 8", len(got.Tiles))
	}
	if got.GlobalTextSize != 20 || got.GlobalFontWeight != "bold" || got.Theme != "dark" {
		t.Errorf("globals: got %+v", got)
	}
}

func TestAddTilePersistsAcrossReopen(t *testing.T) {
	db, path := openTestDB(t)
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	tile, err := s.AddTile(model.TileConfig{Text: "Codă", Color: "#AA00FF", Duration: 4000, IsActive: true})
	if err != nil {
		t.Fatalf("AddTile: %v", err)
	}
	if tile.ID == "" {
		t.Fatal("tile id: got empty")
	}

	db2, err := database.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2, err := NewStore(db2)
	if err != nil {
		t.Fatalf("NewStore reopen: %v", err)
	}
	tiles := s2.Settings().Tiles
	if len(tiles) != 9 {
		t.Fatalf("tiles after reopen: got %d, want 9", len(tiles))
	}
	if got := tiles[8]; got.Text != "Codă" || got.ID != tile.ID {
		t.Errorf("persisted tile: got %+v", got)
	}
}

func TestAddTileIDsAreUnique(t *testing.T) {
	db, _ := openTestDB(t)
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	a, err := s.AddTile(model.TileConfig{Text: "a"})
	if err != nil {
		t.Fatalf("AddTile: %v", err)
	}
	b, err := s.AddTile(model.TileConfig{Text: "b"})
	if err != nil {
		t.Fatalf("AddTile: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("back-to-back tile ids identical: %q", a.ID)
	}
}

func TestUpdateTile(t *testing.T) {
	db, _ := openTestDB(t)
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	text := "X3 Ref"
	active := false
	if err := s.UpdateTile("3", model.TileUpdate{Text: &text, IsActive: &active}); err != nil {
		t.Fatalf("UpdateTile: %v", err)
	}
	var got *model.TileConfig
	for _, tile := range s.Settings().Tiles {
		if tile.ID == "3" {
			tile := tile
			got = &tile
		}
	}
	if got == nil || got.Text != "X3 Ref" || got.IsActive {
		t.Errorf("updated tile: got %+v", got)
	}
	// Untouched fields stay.
	if got.Color != "#FF0000" {
		t.Errorf("color: got %q, want unchanged", got.Color)
	}

	if err := s.UpdateTile("missing", model.TileUpdate{Text: &text}); !errors.Is(err, errs.ErrTileNotFound) {
		t.Errorf("update missing: got %v, want ErrTileNotFound", err)
	}
}

func TestRemoveTile(t *testing.T) {
	db, _ := openTestDB(t)
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.RemoveTile("2"); err != nil {
		t.Fatalf("RemoveTile: %v", err)
	}
	for _, tile := range s.Settings().Tiles {
		if tile.ID == "2" {
			t.Error("removed tile still present")
		}
	}
	if err := s.RemoveTile("2"); !errors.Is(err, errs.ErrTileNotFound) {
		t.Errorf("remove again: got %v, want ErrTileNotFound", err)
	}
}

func TestActiveTilesPreserveOrder(t *testing.T) {
	db, _ := openTestDB(t)
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	active := s.ActiveTiles()
	if len(active) != 5 {
		t.Fatalf("active tiles: got %d, want 5", len(active))
	}
	for i := 1; i < len(active); i++ {
		if active[i-1].ID >= active[i].ID {
			t.Errorf("order broken at %d: %q then %q", i, active[i-1].ID, active[i].ID)
		}
	}
}

func TestUpdateGlobalAndReset(t *testing.T) {
	db, _ := openTestDB(t)
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.UpdateGlobal(28, "900", "light"); err != nil {
		t.Fatalf("UpdateGlobal: %v", err)
	}
	got := s.Settings()
	if got.GlobalTextSize != 28 || got.GlobalFontWeight != "900" || got.Theme != "light" {
		t.Errorf("globals: got %+v", got)
	}

	if err := s.ResetToDefaults(); err != nil {
		t.Fatalf("ResetToDefaults: %v", err)
	}
	got = s.Settings()
	if got.GlobalTextSize != 20 || got.Theme != "dark" || len(got.Tiles) != 8 {
		t.Errorf("after reset: got %+v", got)
	}
}
