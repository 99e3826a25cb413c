package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/playmatatu/neonsnooker/internal/game"
)

func drain(s beep.Streamer) (samples int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, v := range buf[:n] {
			peak = math.Max(peak, math.Abs(v[0]))
		}
		samples += n
		if !ok {
			return samples, peak
		}
	}
}

func TestToneLength(t *testing.T) {
	tests := []struct {
		name string
		s    beep.Streamer
		want time.Duration
	}{
		{"drop", drop(sampleRate), 260 * time.Millisecond},
		{"rise", rise(sampleRate), 180 * time.Millisecond},
	}
	for _, tt := range tests {
		n, peak := drain(tt.s)
		if n != sampleRate.N(tt.want) {
			t.Errorf("%s: %d samples, want %d", tt.name, n, sampleRate.N(tt.want))
		}
		if peak <= 0 || peak > 1 {
			t.Errorf("%s: peak %v out of range", tt.name, peak)
		}
	}
}

func TestToneDecays(t *testing.T) {
	tn := newTone(440, 440, 200*time.Millisecond, sampleRate)
	buf := make([][2]float64, sampleRate.N(200*time.Millisecond))
	n, _ := tn.Stream(buf)

	peak := func(from, to int) float64 {
		m := 0.0
		for _, v := range buf[from:to] {
			m = math.Max(m, math.Abs(v[0]))
		}
		return m
	}
	quarter := n / 4
	if head, tail := peak(0, quarter), peak(n-quarter, n); tail >= head {
		t.Errorf("tail peak %v not below head peak %v", tail, head)
	}
}

func TestEnqueueCapsVoices(t *testing.T) {
	p := NewPlayer(1, nil)
	added := 0
	for i := 0; i < maxVoices+4; i++ {
		if p.enqueue(game.SoundCollision) {
			added++
		}
	}
	if added != maxVoices {
		t.Errorf("voices = %d, want %d", added, maxVoices)
	}
	if p.enqueue(game.Sound(42)) {
		t.Error("unknown sound queued")
	}
}

func TestPlayBeforeInitializeIsSilent(t *testing.T) {
	p := NewPlayer(0.5, nil)
	p.Play(game.SoundPocket)
	if p.mixer.Len() != 0 {
		t.Error("uninitialized player queued a sound")
	}
	p.Close()
}

func TestMutedVolume(t *testing.T) {
	n, peak := drain(withVolume(drop(sampleRate), 0))
	if n == 0 || peak != 0 {
		t.Errorf("muted cue: %d samples, peak %v", n, peak)
	}
}
