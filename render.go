package main

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

const wavPCMFormat = 1

// Render mixes frames offline, blockSize frames at a time, and writes them
// as 16 bit PCM. onBlock, if set, runs before each block with the index of
// its first frame; the demo pattern uses it to trigger loops.
func Render(b *Blender, w io.WriteSeeker, frames, blockSize int, onBlock func(frame int)) error {
	cfg := b.Config()
	if blockSize <= 0 {
		blockSize = 512
	}

	enc := wav.NewEncoder(w, cfg.SampleRate, 16, cfg.Channels, wavPCMFormat)

	block := make([]Sample, blockSize*cfg.Channels)
	ibuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: cfg.Channels, SampleRate: cfg.SampleRate},
		Data:           make([]int, len(block)),
		SourceBitDepth: 16,
	}

	for done := 0; done < frames; {
		n := frames - done
		if n > blockSize {
			n = blockSize
		}
		if onBlock != nil {
			onBlock(done)
		}

		out := block[:n*cfg.Channels]
		b.ProduceBlock(out, nil)

		ibuf.Data = ibuf.Data[:len(out)]
		for i, v := range out {
			ibuf.Data[i] = int(v)
		}
		if err := enc.Write(ibuf); err != nil {
			return errors.Wrap(err, "failed to write wav data")
		}
		done += n
	}

	return errors.Wrap(enc.Close(), "failed to finish wav file")
}
