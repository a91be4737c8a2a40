package main

import (
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	screenWidth  = 1000
	screenHeight = 600

	scopeSize = 2048
)

// keyboard row a..l is laid out like the white keys of a piano: a C major
// scale over one and a half octaves, counted from the base note
var keyNotes = map[sdl.Keycode]int{
	sdl.K_a: 0,
	sdl.K_s: 2,
	sdl.K_d: 4,
	sdl.K_f: 5,
	sdl.K_g: 7,
	sdl.K_h: 9,
	sdl.K_j: 11,
	sdl.K_k: 12,
	sdl.K_l: 14,
}

// draw opens a window showing loop levels, the output waveform and its
// spectrum. The keyboard acts as a trigger source: held keys bring loops up
// to full level, space toggles recording into the last triggered loop.
func draw(b *Blender, sink EventSink, scope *Scope, baseNote int) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "failed to initialize SDL")
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("loopblender", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, screenWidth, screenHeight, sdl.WINDOW_SHOWN)
	if err != nil {
		return errors.Wrap(err, "failed to create window")
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return errors.Wrap(err, "failed to create renderer")
	}
	defer renderer.Destroy()

	keystates := make(map[sdl.Keycode]int)
	dataPoints := make([]float64, scopeSize)

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				sym := event.Keysym.Sym
				if event.Type == sdl.KEYUP {
					if loop, ok := keystates[sym]; ok {
						delete(keystates, sym)
						sink.ApplyEvent(SetLevel(loop, 0))
					}
					continue
				}
				if event.Repeat != 0 {
					continue
				}

				switch sym {
				case sdl.K_ESCAPE:
					running = false
				case sdl.K_z:
					baseNote -= 12
				case sdl.K_x:
					baseNote += 12
				case sdl.K_SPACE:
					ToggleRecording(b, sink)
				default:
					off, ok := keyNotes[sym]
					if !ok {
						continue
					}
					loop := baseNote + off
					keystates[sym] = loop
					sink.ApplyEvent(SetLevel(loop, 1))
				}
			}
		}

		n := scope.Snapshot(dataPoints)

		fftResult := fft.FFTReal(dataPoints[:n])

		// Get the magnitude spectrum
		magnitudeSpectrum := make([]float64, len(fftResult)/2+1)
		for i, c := range fftResult[:len(magnitudeSpectrum)] {
			magnitudeSpectrum[i] = cmplx.Abs(c) / float64(n)
		}

		renderer.SetDrawColor(255, 255, 255, 255)
		renderer.Clear()

		drawLevels(renderer, b, 50, 20, 900, 60)
		graphData(renderer, dataPoints[n-500:n], 50, 100, 900, 220, -1, 1)
		graphData(renderer, magnitudeSpectrum[:200], 50, 360, 900, 200, 0, 0.25)

		renderer.Present()
		sdl.Delay(16)
	}

	return nil
}

// drawLevels paints one bar per loop; the loop being recorded is red.
func drawLevels(renderer *sdl.Renderer, b *Blender, x, y, width, height int32) {
	loops := int32(b.Config().LoopCount)
	barWidth := width / loops
	if barWidth < 1 {
		barWidth = 1
	}
	target, recording := b.RecordingTarget()

	renderer.SetDrawColor(0, 0, 0, 255)
	renderer.DrawLine(x, y+height, x+width, y+height)

	for l := int32(0); l < loops && l*barWidth < width; l++ {
		h := int32(b.Level(int(l)) * float32(height))
		if recording && int(l) == target {
			renderer.SetDrawColor(220, 0, 0, 255)
			if h == 0 {
				h = 2
			}
		} else {
			renderer.SetDrawColor(0, 90, 200, 255)
		}
		renderer.FillRect(&sdl.Rect{X: x + l*barWidth, Y: y + height - h, W: barWidth, H: h})
	}
}

func graphData(renderer *sdl.Renderer, dataPoints []float64, x, y, width, height int32, minval, maxval float64) {
	// Draw the graph axes
	renderer.SetDrawColor(0, 0, 0, 255)
	renderer.DrawLine(x, y+height/2, x+width, y+height/2)
	renderer.DrawLine(x, y, x, y+height)

	spread := maxval - minval
	renderer.SetDrawColor(255, 0, 0, 255)
	for i := 0; i < len(dataPoints)-1; i++ {
		x1 := x + int32(float64(i)*float64(width)/float64(len(dataPoints)-1))
		y1 := y + height - int32((dataPoints[i]-minval)*float64(height)/spread)
		x2 := x + int32(float64(i+1)*float64(width)/float64(len(dataPoints)-1))
		y2 := y + height - int32((dataPoints[i+1]-minval)*float64(height)/spread)
		renderer.DrawLine(x1, y1, x2, y2)
	}
}
