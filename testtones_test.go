package main

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/maddyblue/go-dsp/fft"
)

func TestNoteToHz(t *testing.T) {
	for note, hz := range map[int]float64{69: 440, 57: 220, 81: 880, 60: 261.6256} {
		if got := NoteToHz(note); math.Abs(got-hz) > 0.001 {
			t.Errorf("NoteToHz(%d) = %f, expected %f", note, got, hz)
		}
	}
}

func TestTestTonesFrequency(t *testing.T) {
	const rate = 8000
	b := newTestBlender(t, 90, rate, 1)
	FillTestTones(b, rate, 0.5)

	for _, loop := range []int{45, 57, 69, 81} {
		data := make([]float64, rate)
		for i, v := range b.Store().Loop(loop, 0) {
			data[i] = float64(v)
		}

		spectrum := fft.FFTReal(data)
		peak := 0
		for i := 1; i < len(spectrum)/2; i++ {
			if cmplx.Abs(spectrum[i]) > cmplx.Abs(spectrum[peak]) {
				peak = i
			}
		}

		// one second of samples: bin i is i Hz
		if exp := NoteToHz(loop); math.Abs(float64(peak)-exp) > 1 {
			t.Errorf("loop %d: spectral peak at %d Hz, expected %.1f", loop, peak, exp)
		}
	}
}

func TestTestTonesAmplitude(t *testing.T) {
	b := newTestBlender(t, 70, 4800, 1)
	FillTestTones(b, 48000, 0.25)

	var hi Sample
	for _, v := range b.Store().Loop(69, 0) {
		if v > hi {
			hi = v
		}
	}
	if exp := Sample(math.Round(0.25 * float64(MaxSample))); hi != exp {
		t.Fatalf("peak %d, expected %d", hi, exp)
	}
}
