package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

// BeepStreamer exposes the blender as an endless beep.Streamer. beep has no
// input path, so nothing gets recorded through it.
type BeepStreamer struct {
	src      BlockProducer
	channels int
	buf      []Sample

	// optional tap, fed with every produced block
	scope *Scope
}

func NewBeepStreamer(src BlockProducer, channels, maxFrames int) *BeepStreamer {
	if maxFrames < 1 {
		maxFrames = 1
	}
	return &BeepStreamer{
		src:      src,
		channels: channels,
		buf:      make([]Sample, maxFrames*channels),
	}
}

func (bs *BeepStreamer) Stream(samples [][2]float64) (int, bool) {
	done := 0
	maxFrames := len(bs.buf) / bs.channels
	for done < len(samples) {
		n := len(samples) - done
		if n > maxFrames {
			n = maxFrames
		}
		block := bs.buf[:n*bs.channels]
		bs.src.ProduceBlock(block, nil)
		if bs.scope != nil {
			bs.scope.Write(block)
		}

		for i := 0; i < n; i++ {
			left := sampleToFloat(block[i*bs.channels])
			right := left
			if bs.channels > 1 {
				right = sampleToFloat(block[i*bs.channels+1])
			}
			samples[done+i][0] = left
			samples[done+i][1] = right
		}
		done += n
	}
	return len(samples), true
}

func (bs *BeepStreamer) Err() error {
	return nil
}

func sampleToFloat(s Sample) float64 {
	return float64(s) / (float64(MaxSample) + 1)
}

type SpeakerBackend struct {
	streamer *BeepStreamer
	sr       beep.SampleRate
	bufSize  int
}

func NewSpeakerBackend(b *Blender, latency time.Duration, scope *Scope) *SpeakerBackend {
	cfg := b.Config()
	sr := beep.SampleRate(cfg.SampleRate)
	n := sr.N(latency)

	bs := NewBeepStreamer(b, cfg.Channels, n)
	bs.scope = scope
	return &SpeakerBackend{
		streamer: bs,
		sr:       sr,
		bufSize:  n,
	}
}

func (sb *SpeakerBackend) Start() error {
	if err := speaker.Init(sb.sr, sb.bufSize); err != nil {
		return errors.Wrap(err, "unable to initialize speaker")
	}
	logger.Info("speaker started", "rate", int(sb.sr), "buffer", sb.bufSize)
	speaker.Play(sb.streamer)
	return nil
}

func (sb *SpeakerBackend) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}
