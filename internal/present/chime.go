package present

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/xtding233/bolillero/internal/draw"
)

const (
	chimeRate     = beep.SampleRate(44100)
	chimeFreq     = 1046.5 // C6
	chimeDuration = 600 * time.Millisecond
)

// tone is a sine wave with an exponential decay.
type tone struct {
	freq  float64
	rate  beep.SampleRate
	total int
	pos   int
	decay float64 // per-sample multiplier
}

// NewTone returns a decaying sine of the given length.
func NewTone(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(d)
	// -60 dB by the last sample
	decay := 1.0
	if total > 0 {
		decay = math.Pow(0.001, 1/float64(total))
	}
	return &tone{freq: freq, rate: rate, total: total, decay: decay}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.total {
			return i, true
		}
		amp := math.Pow(t.decay, float64(t.pos))
		v := amp * math.Sin(2*math.Pi*t.freq*float64(t.pos)/float64(t.rate))
		samples[i][0], samples[i][1] = v, v
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// Chime plays a short tone whenever an entrant is revealed. Audio is
// optional: if the device fails to open the chime stays silent.
type Chime struct {
	mu     sync.Mutex
	play   func(beep.Streamer)
	volume float64 // log2 gain; 0 is unity
	log    *slog.Logger
}

// NewChime returns a silent chime; call Init to attach the speaker.
func NewChime(log *slog.Logger) *Chime {
	if log == nil {
		log = slog.Default()
	}
	return &Chime{volume: -1, log: log}
}

// Init opens the default audio device.
func (c *Chime) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := speaker.Init(chimeRate, chimeRate.N(100*time.Millisecond)); err != nil {
		c.log.Warn("audio unavailable; chime disabled", "error", err)
		return err
	}
	c.play = func(s beep.Streamer) { speaker.Play(s) }
	return nil
}

// Close stops playback.
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.play != nil {
		speaker.Clear()
		c.play = nil
	}
}

func (c *Chime) PhaseChanged(p draw.Phase, _ int, _ string) {
	if p != draw.PhaseRevealing {
		return
	}
	c.mu.Lock()
	play := c.play
	c.mu.Unlock()
	if play == nil {
		return
	}
	play(&effects.Volume{
		Streamer: NewTone(chimeFreq, chimeDuration, chimeRate),
		Base:     2,
		Volume:   c.volume,
	})
}

func (c *Chime) PlacementCommitted(int, int, string) {}

func (c *Chime) CycleComplete() {}
