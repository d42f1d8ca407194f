package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/asteroids/internal/audio"
	"github.com/l1jgo/asteroids/internal/game"
	"github.com/l1jgo/asteroids/internal/input"
	"github.com/l1jgo/asteroids/internal/render"
	"go.uber.org/zap"
)

// hostState is the screen the player is on.
type hostState int

const (
	stateMenu hostState = iota
	statePlay
	statePause
	stateOver
)

func (s hostState) String() string {
	switch s {
	case stateMenu:
		return "menu"
	case statePlay:
		return "play"
	case statePause:
		return "pause"
	case stateOver:
		return "over"
	default:
		return "unknown"
	}
}

// host is the state machine around a play session. The session raises
// GameOver; only the host switches screens.
type host struct {
	session  *game.Session
	renderer *render.Renderer
	controls *input.Controls
	player   *audio.Player
	log      *zap.Logger

	state      hostState
	finalScore int
	maxStep    time.Duration
}

func newHost(session *game.Session, renderer *render.Renderer, controls *input.Controls, player *audio.Player, tickRate time.Duration, log *zap.Logger) *host {
	return &host{
		session:  session,
		renderer: renderer,
		controls: controls,
		player:   player,
		log:      log,
		state:    stateMenu,
		maxStep:  4 * tickRate,
	}
}

func (h *host) switchTo(next hostState) {
	h.log.Debug("state change",
		zap.Stringer("from", h.state),
		zap.Stringer("to", next))
	h.state = next
}

// handleEvent reacts to one terminal event. It returns true when the
// program should exit.
func (h *host) handleEvent(ev tcell.Event) (quit bool, err error) {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false, nil
	}
	if key.Key() == tcell.KeyCtrlC {
		h.session.Stop()
		return true, nil
	}

	switch h.state {
	case stateMenu:
		switch {
		case key.Rune() == ' ':
			if err := h.session.Start(); err != nil {
				return true, fmt.Errorf("start session: %w", err)
			}
			if h.player != nil {
				h.player.Attach(h.session.State().Bus)
			}
			h.controls.Reset()
			h.switchTo(statePlay)
		case key.Rune() == 'q' || key.Key() == tcell.KeyEscape:
			return true, nil
		}
	case statePlay:
		if key.Key() == tcell.KeyEscape {
			h.controls.Reset()
			h.switchTo(statePause)
			return false, nil
		}
		h.controls.HandleKey(key)
	case statePause:
		switch {
		case key.Key() == tcell.KeyEscape:
			h.switchTo(statePlay)
		case key.Rune() == 'q':
			h.session.Stop()
			h.switchTo(stateMenu)
		}
	case stateOver:
		if key.Rune() == ' ' {
			h.switchTo(stateMenu)
		}
	}
	return false, nil
}

// tick advances the play state by dt and redraws the current screen.
func (h *host) tick(now time.Time, dt time.Duration) {
	if h.state == statePlay {
		h.session.Update(min(dt, h.maxStep), h.controls.Snapshot(now))
		if !h.session.Over() {
			h.renderer.DrawPlay(h.session.State())
			return
		}
		h.finalScore = h.session.Score()
		h.session.Stop()
		h.switchTo(stateOver)
	}
	h.draw()
}

func (h *host) draw() {
	switch h.state {
	case stateMenu:
		h.renderer.DrawMessage("ASTEROIDS", "", "Press Space to Start", "q to quit")
	case statePause:
		h.renderer.DrawMessage("Paused", "", "Esc to resume", "q to quit to menu")
	case stateOver:
		h.renderer.DrawMessage("Game Over. Your Score "+h.renderer.FormatNumber(h.finalScore), "", "Press Space")
	}
}
