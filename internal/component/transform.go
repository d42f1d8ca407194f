package component

// Transform is an entity's position and orientation in the arena.
// Written only by the physics and boundary systems.
type Transform struct {
	Pos      Vec2
	Rotation float64 // radians, counter-clockwise
}

// Physical holds the motion state integrated by the physics system.
// |Velocity| never exceeds MaxVelocity once a system has written it.
type Physical struct {
	Velocity    Vec2    // units / s
	MaxVelocity float64 // units / s
	Rotation    float64 // rad / s
}
