package data

import (
	"fmt"
	"os"

	"github.com/l1jgo/asteroids/internal/component"
	"gopkg.in/yaml.v3"
)

// SpriteSheet is one drawable kind. Frames are terminal glyphs: animation
// frames for explosions, visual variants for asteroids, headings for ships.
type SpriteSheet struct {
	ID       component.SheetID `yaml:"id"`
	Frames   []string          `yaml:"frames"`
	Color    string            `yaml:"color"`    // tcell color name
	Rotates  bool              `yaml:"rotates"`  // frame picked from heading instead of Sprite.Frame
	Variants int               `yaml:"variants"` // frames usable as random variants; 0 = 1
}

type spriteListFile struct {
	Sheets []SpriteSheet `yaml:"sheets"`
}

// SpriteTable provides sheet lookup by id.
type SpriteTable struct {
	sheets map[component.SheetID]*SpriteSheet
}

// LoadSpriteTable loads sprites.yaml.
func LoadSpriteTable(path string) (*SpriteTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sprite list: %w", err)
	}
	return ParseSpriteTable(raw)
}

// ParseSpriteTable decodes a sprite catalog from YAML bytes.
func ParseSpriteTable(raw []byte) (*SpriteTable, error) {
	var f spriteListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sprite list: %w", err)
	}
	t := &SpriteTable{
		sheets: make(map[component.SheetID]*SpriteSheet, len(f.Sheets)),
	}
	for i := range f.Sheets {
		s := &f.Sheets[i]
		if s.ID == "" {
			return nil, fmt.Errorf("sprite sheet %d: missing id", i)
		}
		if len(s.Frames) == 0 {
			return nil, fmt.Errorf("sprite sheet %s: no frames", s.ID)
		}
		if s.Variants > len(s.Frames) {
			return nil, fmt.Errorf("sprite sheet %s: %d variants but %d frames", s.ID, s.Variants, len(s.Frames))
		}
		if _, dup := t.sheets[s.ID]; dup {
			return nil, fmt.Errorf("sprite sheet %s: duplicate id", s.ID)
		}
		t.sheets[s.ID] = s
	}
	for _, id := range []component.SheetID{
		component.SheetShip, component.SheetBullet,
		component.SheetAsteroid, component.SheetExplosion,
	} {
		if _, ok := t.sheets[id]; !ok {
			return nil, fmt.Errorf("sprite list: missing required sheet %s", id)
		}
	}
	if n := len(t.sheets[component.SheetExplosion].Frames); n <= component.ExplosionFrameLimit {
		return nil, fmt.Errorf("sprite sheet %s: need %d frames, got %d",
			component.SheetExplosion, component.ExplosionFrameLimit+1, n)
	}
	return t, nil
}

// Get returns the sheet with the given id, or nil if none.
func (t *SpriteTable) Get(id component.SheetID) *SpriteSheet {
	return t.sheets[id]
}

// Variants returns how many random visual variants a sheet offers (at least 1).
func (t *SpriteTable) Variants(id component.SheetID) int {
	s := t.sheets[id]
	if s == nil || s.Variants < 1 {
		return 1
	}
	return s.Variants
}

// Count returns the total number of sheets loaded.
func (t *SpriteTable) Count() int {
	return len(t.sheets)
}

// Glyph returns the glyph to draw for a sprite, clamping out-of-range frames.
func (s *SpriteSheet) Glyph(frame int) string {
	if frame < 0 {
		frame = 0
	}
	if frame >= len(s.Frames) {
		frame = len(s.Frames) - 1
	}
	return s.Frames[frame]
}
