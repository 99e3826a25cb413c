// Package audio synthesises the table's sound cues and plays them through
// the system speaker.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/playmatatu/neonsnooker/internal/game"
	"go.uber.org/zap"
)

const sampleRate = beep.SampleRate(48000)

// maxVoices caps overlapping cues; a break shot can trigger dozens of
// collisions inside one buffer.
const maxVoices = 8

// Player implements game.Audio. Play never blocks the tick loop.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	log         *zap.Logger
}

func NewPlayer(volume float64, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{
		mixer:  &beep.Mixer{},
		volume: volume,
		log:    log.Named("audio"),
	}
}

// Initialize opens the speaker. A Player that failed to initialize stays
// silent.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

func (p *Player) Play(s game.Sound) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	p.enqueue(s)
}

// enqueue adds the cue for s to the mixer. The caller holds p.mu.
func (p *Player) enqueue(s game.Sound) bool {
	speaker.Lock()
	defer speaker.Unlock()
	if p.mixer.Len() >= maxVoices {
		p.log.Debug("voice dropped", zap.Stringer("sound", s))
		return false
	}
	st := cueFor(s)
	if st == nil {
		return false
	}
	p.mixer.Add(withVolume(st, p.volume))
	return true
}

func cueFor(s game.Sound) beep.Streamer {
	switch s {
	case game.SoundCollision:
		return click(sampleRate)
	case game.SoundPocket:
		return drop(sampleRate)
	case game.SoundRespawn:
		return rise(sampleRate)
	}
	return nil
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
	p.initialized = false
}
