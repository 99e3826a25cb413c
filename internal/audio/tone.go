package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// tone is a decaying sine, optionally swept from freq to endFreq.
type tone struct {
	freq, endFreq float64
	phase         float64
	decay         float64
	total, pos    int
	rate          beep.SampleRate
}

func newTone(freq, endFreq float64, d time.Duration, rate beep.SampleRate) *tone {
	total := rate.N(d)
	return &tone{
		freq:    freq,
		endFreq: endFreq,
		total:   total,
		decay:   5.0 / float64(total),
		rate:    rate,
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos >= t.total {
			return i, i > 0
		}
		progress := float64(t.pos) / float64(t.total)
		freq := t.freq + (t.endFreq-t.freq)*progress
		val := math.Sin(2*math.Pi*t.phase) * math.Exp(-t.decay*float64(t.pos))

		samples[i][0] = val
		samples[i][1] = val

		t.phase += freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// click is a short burst of two detuned partials, the sound of two balls
// meeting.
func click(rate beep.SampleRate) beep.Streamer {
	return beep.Mix(
		newTone(2200, 2000, 40*time.Millisecond, rate),
		newTone(3100, 2900, 25*time.Millisecond, rate),
	)
}

// drop falls in pitch as the ball rolls into the pocket.
func drop(rate beep.SampleRate) beep.Streamer {
	return newTone(520, 140, 260*time.Millisecond, rate)
}

// rise climbs while a ball returns to the table.
func rise(rate beep.SampleRate) beep.Streamer {
	return newTone(330, 880, 180*time.Millisecond, rate)
}

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
