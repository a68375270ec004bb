package model

import "testing"

func TestDefaultTilesComposition(t *testing.T) {
	t.Parallel()
	tiles := DefaultTiles()

	if len(tiles) != 8 {
		t.Fatalf("tiles: got %d, want 8", len(tiles))
	}
	active := 0
	for _, tile := range tiles {
		if tile.IsActive {
			active++
		}
	}
	// The dash tile plus four common performance cues; the rest are empty
	// slots waiting for custom cues.
	if active != 5 {
		t.Errorf("active tiles: got %d, want 5", active)
	}
	if tiles[0].Text != "—" || tiles[0].Duration != 0 {
		t.Errorf("first tile: got %q/%dms, want dash with no timeout", tiles[0].Text, tiles[0].Duration)
	}
	for _, tile := range tiles[5:] {
		if tile.IsActive || tile.Text != "" {
			t.Errorf("slot %s: got %+v, want empty inactive", tile.ID, tile)
		}
	}
}
