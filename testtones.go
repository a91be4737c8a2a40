package main

import (
	"log/slog"
	"math"
)

const (
	midiNoteA4 = 69
	hzA4       = 440
)

func NoteToHz(note int) float64 {
	return hzA4 * math.Pow(2, float64(note-midiNoteA4)/12)
}

// FillTestTones writes a sine into every channel of every loop, treating
// the loop index as a MIDI note. The waves are not spliced at the loop
// boundary, so most loops click once per lap.
func FillTestTones(b *Blender, sampleRate int, amplitude float64) {
	ls := b.Store()
	logger.Info("generating test loops", "loops", ls.LoopCount(), "samples", ls.LoopLength())

	peak := amplitude * float64(MaxSample)
	for loop := 0; loop < ls.LoopCount(); loop++ {
		hz := NoteToHz(loop)
		for s := 0; s < ls.LoopLength(); s++ {
			v := Sample(math.Round(peak * sineOsc(calcPhase(s, float64(sampleRate), hz))))
			for c := 0; c < ls.Channels(); c++ {
				ls.Set(loop, s, c, v)
			}
		}
	}

	logger.Debug("test loops done", slog.Int("bytes", ls.Size()))
}

func sineOsc(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

func calcPhase(pos int, samplerate, freq float64) float64 {
	return float64(pos) / samplerate * freq
}
