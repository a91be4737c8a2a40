package main

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

const (
	// FullLevel is unity gain in the fixed point level scale.
	FullLevel  = 128
	levelShift = 7

	noLoop = -1
)

type Config struct {
	LoopCount  int
	LoopLength int // samples per loop, 0 means one second at SampleRate
	Channels   int
	SampleRate int
}

func DefaultConfig() Config {
	return Config{
		LoopCount:  100,
		Channels:   1,
		SampleRate: 48000,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.LoopCount == 0 {
		c.LoopCount = def.LoopCount
	}
	if c.Channels == 0 {
		c.Channels = def.Channels
	}
	if c.SampleRate == 0 {
		c.SampleRate = def.SampleRate
	}
	if c.LoopLength == 0 {
		c.LoopLength = c.SampleRate
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.LoopCount < 0:
		return errors.Errorf("loop count must be positive, got %d", c.LoopCount)
	case c.LoopLength < 0:
		return errors.Errorf("loop length must be positive, got %d", c.LoopLength)
	case c.Channels < 0:
		return errors.Errorf("channel count must be positive, got %d", c.Channels)
	case c.SampleRate < 0:
		return errors.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	return nil
}

// Blender is the mixing context shared by the audio and event drivers.
//
// ProduceBlock is the only writer of the play position and the sample
// buffer. ApplyEvent is the only writer of levels, the recording target and
// the last triggered loop. Those three live in single atomic words so the
// audio path can read them without locks; a stale value costs at most one
// block of wrong gain.
type Blender struct {
	cfg   Config
	store *LoopStore

	position int
	// copy of position for readers outside the audio thread
	published atomic.Int64

	levels        []atomic.Int32
	recordTarget  atomic.Int32
	lastTriggered atomic.Int32

	// per block copy of levels, owned by ProduceBlock
	snapshot []int64
}

func NewBlender(cfg Config) (*Blender, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	store, err := NewLoopStore(cfg.LoopCount, cfg.Channels, cfg.LoopLength)
	if err != nil {
		return nil, err
	}

	b := &Blender{
		cfg:      cfg,
		store:    store,
		levels:   make([]atomic.Int32, cfg.LoopCount),
		snapshot: make([]int64, cfg.LoopCount),
	}
	b.recordTarget.Store(noLoop)
	b.lastTriggered.Store(noLoop)

	return b, nil
}

func (b *Blender) Config() Config    { return b.cfg }
func (b *Blender) Store() *LoopStore { return b.store }

// ProduceBlock fills out with len(out)/channels mixed frames, advancing the
// play position by the same amount. While a loop is being recorded, the
// matching frames of in overwrite that loop after they have been mixed, so
// new material is heard from the next lap on. in may be nil or short, in
// which case nothing is recorded.
//
// Runs on the audio thread: no allocation, no locks, no I/O.
func (b *Blender) ProduceBlock(out, in []Sample) {
	ls := b.store
	channels := ls.channels
	loops := ls.loopCount
	stride := loops * channels
	frames := len(out) / channels

	for l := range b.snapshot {
		b.snapshot[l] = int64(b.levels[l].Load())
	}

	target := int(b.recordTarget.Load())
	recording := target != noLoop && len(in) >= frames*channels

	pt := b.position
	for f := 0; f < frames; f++ {
		pt++
		if pt == ls.loopLength {
			pt = 0
		}

		base := pt * stride
		frame := ls.buffer[base : base+stride]
		for c := 0; c < channels; c++ {
			var acc int64
			for l, lvl := range b.snapshot {
				acc += lvl * int64(frame[l*channels+c])
			}
			out[f*channels+c] = clampSample(acc >> levelShift)
		}

		if recording {
			for c := 0; c < channels; c++ {
				frame[target*channels+c] = in[f*channels+c]
			}
		}
	}
	b.position = pt
	b.published.Store(int64(pt))
}

func clampSample(v int64) Sample {
	if v > int64(MaxSample) {
		return MaxSample
	}
	if v < int64(MinSample) {
		return MinSample
	}
	return Sample(v)
}

// Position is the index of the frame most recently produced.
func (b *Blender) Position() int {
	return int(b.published.Load())
}

// SetPosition moves the play cursor. Not safe while an audio driver is
// running; the next produced frame is p+1.
func (b *Blender) SetPosition(p int) {
	if p < 0 || p >= b.cfg.LoopLength {
		panic("blender: position out of range")
	}
	b.position = p
	b.published.Store(int64(p))
}

// Level returns a loop's current gain in [0,1].
func (b *Blender) Level(loop int) float32 {
	if loop < 0 || loop >= len(b.levels) {
		return 0
	}
	return float32(b.levels[loop].Load()) / FullLevel
}

func (b *Blender) RecordingTarget() (int, bool) {
	t := int(b.recordTarget.Load())
	return t, t != noLoop
}

func (b *Blender) LastTriggered() (int, bool) {
	t := int(b.lastTriggered.Load())
	return t, t != noLoop
}
