package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/l1jgo/asteroids/internal/config"
	"github.com/l1jgo/asteroids/internal/core/event"
	"go.uber.org/zap"
)

const sampleRate = beep.SampleRate(44100)

// Player plays short synthesized effects for simulation events. A disabled
// player accepts every call and plays nothing.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	log         *zap.Logger
}

func NewPlayer(cfg config.AudioConfig, log *zap.Logger) *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		volume: math.Max(0, math.Min(1, cfg.Volume)),
		log:    log,
	}
}

// Init opens the speaker. Audio stays off if the device cannot be opened;
// the error is returned for the host to log.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Attach subscribes the player to the events it has sounds for.
func (p *Player) Attach(bus *event.Bus) {
	event.Subscribe(bus, func(event.BulletFired) { p.play(Shot(p.volume)) })
	event.Subscribe(bus, func(event.AsteroidDestroyed) { p.play(Explosion(p.volume)) })
	event.Subscribe(bus, func(event.GameOver) { p.play(GameOver(p.volume)) })
}

func (p *Player) play(s beep.Streamer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Close silences everything still playing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
	p.log.Debug("audio closed")
}

// Shot is a short falling chirp.
func Shot(volume float64) beep.Streamer {
	return beep.Take(sampleRate.N(80*time.Millisecond), &sweep{from: 1400, to: 500, dur: 0.08, gain: 0.25 * volume})
}

// Explosion is a decaying noise burst.
func Explosion(volume float64) beep.Streamer {
	return beep.Take(sampleRate.N(300*time.Millisecond), &noise{dur: 0.3, gain: 0.4 * volume, state: 0x2545f491})
}

// GameOver is a slow descending tone.
func GameOver(volume float64) beep.Streamer {
	return beep.Take(sampleRate.N(700*time.Millisecond), &sweep{from: 440, to: 110, dur: 0.7, gain: 0.3 * volume})
}

// sweep is a sine whose frequency slides linearly over dur seconds with a
// linear fade out.
type sweep struct {
	from, to float64
	dur      float64
	gain     float64
	pos      int
	phase    float64
}

func (g *sweep) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(g.pos) / float64(sampleRate)
		k := math.Min(t/g.dur, 1)
		freq := g.from + (g.to-g.from)*k
		g.phase += 2 * math.Pi * freq / float64(sampleRate)
		v := math.Sin(g.phase) * g.gain * (1 - k)
		samples[i][0], samples[i][1] = v, v
		g.pos++
	}
	return len(samples), true
}

func (g *sweep) Err() error { return nil }

// noise is xorshift white noise with an exponential decay.
type noise struct {
	dur   float64
	gain  float64
	pos   int
	state uint32
}

func (g *noise) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		g.state ^= g.state << 13
		g.state ^= g.state >> 17
		g.state ^= g.state << 5
		white := float64(g.state)/float64(math.MaxUint32)*2 - 1
		t := float64(g.pos) / float64(sampleRate)
		v := white * g.gain * math.Exp(-5*t/g.dur)
		samples[i][0], samples[i][1] = v, v
		g.pos++
	}
	return len(samples), true
}

func (g *noise) Err() error { return nil }
