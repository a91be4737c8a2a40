package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
	"github.com/rakyll/portmidi"
)

const (
	testToneAmplitude = 0.5
	speakerLatency    = time.Second / 20
	demoStep          = 400 * time.Millisecond
)

type options struct {
	loops     int
	rate      int
	length    int
	testLoops bool
	midiDev   int
	buffer    int
	debug     bool
	demo      bool
	seconds   float64
	out       string
	baseNote  int
}

func parseOptions(args []string) (string, options, error) {
	cmd := "run"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var o options
	fs := flag.NewFlagSet("loopblender "+cmd, flag.ContinueOnError)
	fs.IntVar(&o.loops, "loops", 100, "number of loops")
	fs.IntVar(&o.loops, "n", 100, "number of loops (shorthand)")
	fs.IntVar(&o.rate, "samplerate", 48000, "sample rate in Hz, 0 uses the device default")
	fs.IntVar(&o.rate, "r", 48000, "sample rate (shorthand)")
	fs.IntVar(&o.length, "length", 0, "loop length in samples [default: samplerate]")
	fs.IntVar(&o.length, "l", 0, "loop length (shorthand)")
	fs.BoolVar(&o.testLoops, "testloops", false, "fill the loops with test tones")
	fs.BoolVar(&o.testLoops, "t", false, "test loops (shorthand)")
	fs.IntVar(&o.midiDev, "mididev", -1, "portmidi input device id, -1 for the default input")
	fs.IntVar(&o.midiDev, "m", -1, "MIDI device (shorthand)")
	fs.IntVar(&o.buffer, "buffer", 0, "frames per audio block, 0 lets the backend choose")
	fs.BoolVar(&o.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&o.demo, "demo", false, "trigger loops with a demo pattern")
	fs.Float64Var(&o.seconds, "seconds", 4, "length of a render in seconds")
	fs.StringVar(&o.out, "out", "loopblender.wav", "render output file")
	fs.IntVar(&o.baseNote, "base", 60, "loop triggered by the a key in draw mode")

	if err := fs.Parse(args); err != nil {
		return "", o, err
	}
	return cmd, o, nil
}

func main() {
	cmd, opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		os.Exit(2)
	}
	initLogger(opts.debug)

	if err := runCommand(cmd, opts); err != nil {
		logger.Error("loopblender failed", "cmd", cmd, "err", err)
		os.Exit(1)
	}
}

func runCommand(cmd string, opts options) error {
	switch cmd {
	case "run":
		return runPortAudio(opts)
	case "play":
		return runSpeaker(opts, nil)
	case "console":
		return runSpeaker(opts, func(b *Blender, _ *Scope) error {
			NewConsole(b, b).Run()
			return nil
		})
	case "draw":
		return runSpeaker(opts, func(b *Blender, scope *Scope) error {
			return draw(b, b, scope, opts.baseNote)
		})
	case "render":
		return runRender(opts)
	case "devices":
		return listDevices()
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func setupBlender(opts options, sampleRate int) (*Blender, error) {
	b, err := NewBlender(Config{
		LoopCount:  opts.loops,
		LoopLength: opts.length,
		Channels:   1,
		SampleRate: sampleRate,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate buffers")
	}

	ls := b.Store()
	logger.Info("allocated sample memory",
		"mib", fmt.Sprintf("%.1f", float64(ls.Size())/1024/1024),
		"loops", ls.LoopCount(),
		"length", ls.LoopLength(),
	)
	if err := ls.Pin(); err != nil {
		logger.Warn("sample memory not pinned, expect glitches under memory pressure", "err", err)
	}

	if opts.testLoops {
		FillTestTones(b, sampleRate, testToneAmplitude)
	}
	return b, nil
}

func releaseBlender(b *Blender) {
	if err := b.Store().Unpin(); err != nil {
		logger.Warn("failed to unpin sample memory", "err", err)
	}
}

// startInputs connects MIDI and the demo pattern to sink. Neither is fatal
// when missing.
func startInputs(opts options, sink EventSink) func() {
	var stops []func()

	if err := portmidi.Initialize(); err != nil {
		logger.Warn("portmidi unavailable", "err", err)
	} else {
		stops = append(stops, func() { portmidi.Terminate() })

		id := portmidi.DefaultInputDeviceID()
		if opts.midiDev >= 0 {
			id = portmidi.DeviceID(opts.midiDev)
		}
		mc, err := OpenController(id, sink)
		if err != nil {
			logger.Warn("failed to connect MIDI input", "device", int(id), "err", err)
		} else {
			stops = append(stops, mc.Shutdown)
		}
	}

	if opts.demo {
		d := NewDemo(sink, demoPattern(opts.loops), 1, demoStep)
		go d.Run()
		stops = append(stops, d.Stop)
	}

	return func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}
}

func waitForSignal() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("running, interrupt to quit")
	<-ctx.Done()
}

func runPortAudio(opts options) error {
	if err := InitPortAudio(); err != nil {
		return err
	}
	defer TerminatePortAudio()

	rate := opts.rate
	if rate == 0 {
		r, err := PortAudioSampleRate()
		if err != nil {
			return err
		}
		rate = r
	}

	b, err := setupBlender(opts, rate)
	if err != nil {
		return err
	}
	defer releaseBlender(b)

	var backend Backend
	backend, err = NewPortAudioBackend(b, b.Config(), opts.buffer)
	if err != nil {
		return err
	}
	if err := backend.Start(); err != nil {
		return err
	}
	defer backend.Close()

	stopInputs := startInputs(opts, b)
	defer stopInputs()

	waitForSignal()
	return nil
}

// runSpeaker plays through beep's speaker and hands control to ui, or waits
// for a signal when ui is nil.
func runSpeaker(opts options, ui func(*Blender, *Scope) error) error {
	rate := opts.rate
	if rate == 0 {
		rate = DefaultConfig().SampleRate
	}

	b, err := setupBlender(opts, rate)
	if err != nil {
		return err
	}
	defer releaseBlender(b)

	scope := NewScope(scopeSize)
	latency := speakerLatency
	if opts.buffer > 0 {
		latency = time.Duration(opts.buffer) * time.Second / time.Duration(rate)
	}

	var backend Backend = NewSpeakerBackend(b, latency, scope)
	if err := backend.Start(); err != nil {
		return err
	}
	defer backend.Close()

	stopInputs := startInputs(opts, b)
	defer stopInputs()

	if ui == nil {
		waitForSignal()
		return nil
	}
	return ui(b, scope)
}

func runRender(opts options) error {
	rate := opts.rate
	if rate == 0 {
		rate = DefaultConfig().SampleRate
	}

	b, err := setupBlender(opts, rate)
	if err != nil {
		return err
	}
	defer releaseBlender(b)

	fi, err := os.Create(opts.out)
	if err != nil {
		return errors.Wrap(err, "failed to create render output")
	}
	defer fi.Close()

	var onBlock func(int)
	if opts.demo {
		onBlock = NewDemo(b, demoPattern(opts.loops), 1, demoStep).Stepper(rate)
	}

	frames := int(opts.seconds * float64(rate))
	if err := Render(b, fi, frames, opts.buffer, onBlock); err != nil {
		return err
	}
	logger.Info("rendered", "file", opts.out, "frames", frames, "rate", rate)
	return nil
}

func listDevices() error {
	if err := InitPortAudio(); err != nil {
		return err
	}
	defer TerminatePortAudio()

	devices, err := portaudio.Devices()
	if err != nil {
		return errors.Wrap(err, "failed to list audio devices")
	}
	fmt.Println("audio devices:")
	for i, d := range devices {
		fmt.Printf("  %2d  %-40s in %d out %d  %.0f Hz\n", i, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
	}

	if err := portmidi.Initialize(); err != nil {
		return errors.Wrap(err, "failed to initialize portmidi")
	}
	defer portmidi.Terminate()

	fmt.Println("MIDI inputs:")
	for id := 0; id < portmidi.CountDevices(); id++ {
		info := portmidi.Info(portmidi.DeviceID(id))
		if info == nil || !info.IsInputAvailable {
			continue
		}
		fmt.Printf("  %2d  %s (%s)\n", id, info.Name, info.Interface)
	}
	return nil
}
