package component

// ColliderTag classifies a collidable entity. Fixed at creation.
type ColliderTag uint8

const (
	TagShip ColliderTag = iota + 1
	TagBullet
	TagAsteroid
)

func (t ColliderTag) String() string {
	switch t {
	case TagShip:
		return "ship"
	case TagBullet:
		return "bullet"
	case TagAsteroid:
		return "asteroid"
	default:
		return "unknown"
	}
}

// Collider makes an entity visible to the collision system.
type Collider struct {
	Tag ColliderTag
}
