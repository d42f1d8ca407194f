package component

// ExplosionFrameLimit is the last animation frame. An explosion whose frame
// countdown expires while on this frame is destroyed.
const ExplosionFrameLimit = 4

// Explosion is the animation state of an explosion entity.
type Explosion struct {
	TimeToUpdate float64 // seconds until the next frame
	FrameCount   int     // 0..ExplosionFrameLimit
}
