package component

// SheetID names a sprite sheet in the sprite catalog.
type SheetID string

const (
	SheetShip      SheetID = "ship"
	SheetBullet    SheetID = "bullet"
	SheetAsteroid  SheetID = "asteroid"
	SheetExplosion SheetID = "explosion"
)

// Sprite selects what the renderer draws for an entity.
type Sprite struct {
	Sheet SheetID
	Frame int
}
