package component

// Ship marks the player-controlled entity and holds its handling and
// weapon state.
type Ship struct {
	Acceleration   float64 // units / s² at full thrust
	TurnRate       float64 // rotation multiplier at full rotate input
	ReloadTimer    float64 // seconds until the gun can fire again
	ReloadInterval float64 // seconds
}
