package input

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/asteroids/internal/world"
)

// Action is a game control a key can drive.
type Action uint8

const (
	ActionNone Action = iota
	ActionThrust
	ActionReverse
	ActionTurnLeft
	ActionTurnRight
	ActionShoot
)

// KeyToAction maps a tcell key event to a game control.
func KeyToAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyUp:
		return ActionThrust
	case tcell.KeyDown:
		return ActionReverse
	case tcell.KeyLeft:
		return ActionTurnLeft
	case tcell.KeyRight:
		return ActionTurnRight
	}
	switch ev.Rune() {
	case 'w', 'W':
		return ActionThrust
	case 's', 'S':
		return ActionReverse
	case 'a', 'A':
		return ActionTurnLeft
	case 'd', 'D':
		return ActionTurnRight
	case ' ':
		return ActionShoot
	}
	return ActionNone
}

// Controls turns key presses into the per-tick input snapshot. Terminals
// report presses and auto-repeat but no releases, so a press holds its
// control for a fixed time after the last repeat.
type Controls struct {
	hold    time.Duration
	pressed [ActionShoot + 1]time.Time
}

func NewControls(hold time.Duration) *Controls {
	return &Controls{hold: hold}
}

// Press records a press of a at the given time. ActionNone is ignored.
func (c *Controls) Press(a Action, at time.Time) {
	if a == ActionNone || int(a) >= len(c.pressed) {
		return
	}
	c.pressed[a] = at
}

// HandleKey records the control ev maps to, if any, and reports whether
// it was a game control.
func (c *Controls) HandleKey(ev *tcell.EventKey) bool {
	a := KeyToAction(ev)
	c.Press(a, ev.When())
	return a != ActionNone
}

func (c *Controls) held(a Action, now time.Time) bool {
	t := c.pressed[a]
	return !t.IsZero() && now.Sub(t) <= c.hold
}

// Snapshot returns the controls held at now. Rotate is positive
// counter-clockwise.
func (c *Controls) Snapshot(now time.Time) world.Input {
	var in world.Input
	if c.held(ActionThrust, now) {
		in.Accelerate++
	}
	if c.held(ActionReverse, now) {
		in.Accelerate--
	}
	if c.held(ActionTurnLeft, now) {
		in.Rotate++
	}
	if c.held(ActionTurnRight, now) {
		in.Rotate--
	}
	in.Shoot = c.held(ActionShoot, now)
	return in
}

// Reset releases every control.
func (c *Controls) Reset() {
	c.pressed = [ActionShoot + 1]time.Time{}
}
