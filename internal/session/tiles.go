package session

import (
	"context"

	"github.com/silasdani/bandaid/internal/errs"
	"github.com/silasdani/bandaid/internal/model"
	"github.com/silasdani/bandaid/internal/store"
)

// Session-scoped tiles are shared through the store and editable only by
// the lead; band devices receive updates over their settings subscription.

// AddSessionTile appends a tile to the session's tile list and returns it
// with its assigned id.
func (c *Controller) AddSessionTile(ctx context.Context, tile model.TileConfig) (model.TileConfig, error) {
	tile.ID = model.NewTileID()
	err := c.mutateTiles(ctx, func(tiles []model.TileConfig) ([]model.TileConfig, error) {
		return append(tiles, tile), nil
	})
	if err != nil {
		return model.TileConfig{}, err
	}
	return tile, nil
}

// UpdateSessionTile applies a partial update to the tile with the given id.
func (c *Controller) UpdateSessionTile(ctx context.Context, id string, update model.TileUpdate) error {
	return c.mutateTiles(ctx, func(tiles []model.TileConfig) ([]model.TileConfig, error) {
		for i := range tiles {
			if tiles[i].ID == id {
				update.Apply(&tiles[i])
				return tiles, nil
			}
		}
		return nil, errs.ErrTileNotFound
	})
}

// RemoveSessionTile deletes the tile with the given id; remaining tiles
// keep their ids.
func (c *Controller) RemoveSessionTile(ctx context.Context, id string) error {
	return c.mutateTiles(ctx, func(tiles []model.TileConfig) ([]model.TileConfig, error) {
		out := make([]model.TileConfig, 0, len(tiles))
		found := false
		for _, t := range tiles {
			if t.ID == id {
				found = true
				continue
			}
			out = append(out, t)
		}
		if !found {
			return nil, errs.ErrTileNotFound
		}
		return out, nil
	})
}

// SessionTiles returns the session's full tile list.
func (c *Controller) SessionTiles() ([]model.TileConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID == "" {
		return nil, errs.ErrNoSession
	}
	if c.settings == nil {
		return nil, nil
	}
	return append([]model.TileConfig(nil), c.settings.Tiles...), nil
}

// SessionActiveTiles returns the tiles marked active, preserving list order.
func (c *Controller) SessionActiveTiles() ([]model.TileConfig, error) {
	tiles, err := c.SessionTiles()
	if err != nil {
		return nil, err
	}
	var out []model.TileConfig
	for _, t := range tiles {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

// mutateTiles applies fn to a copy of the current tile list, writes the
// whole settings document back, then installs the new list locally. The
// write is last-writer-wins like every other store mutation.
func (c *Controller) mutateTiles(ctx context.Context, fn func([]model.TileConfig) ([]model.TileConfig, error)) error {
	c.mu.Lock()
	if c.sessionID == "" {
		c.mu.Unlock()
		return errs.ErrNoSession
	}
	if c.role != model.RoleLead {
		c.mu.Unlock()
		return errs.ErrNotLead
	}
	id := c.sessionID
	var tiles []model.TileConfig
	if c.settings != nil {
		tiles = append(tiles, c.settings.Tiles...)
	}
	c.mu.Unlock()

	tiles, err := fn(tiles)
	if err != nil {
		return err
	}
	settings := model.SessionSettings{Tiles: tiles}
	if err := c.store.Write(ctx, store.SessionSettingsPath(id), settings); err != nil {
		return err
	}

	c.mu.Lock()
	if c.sessionID == id {
		c.settings = &settings
	}
	c.mu.Unlock()
	c.notify()
	return nil
}
