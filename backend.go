package main

import (
	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
)

// BlockProducer is the audio side of the blender as the drivers see it.
type BlockProducer interface {
	ProduceBlock(out, in []Sample)
}

var _ BlockProducer = (*Blender)(nil)

// Backend is an audio driver that pulls blocks from a BlockProducer on its
// own schedule between Start and Close.
type Backend interface {
	Start() error
	Close() error
}

// PortAudioBackend runs a duplex stream: the callback hands the device
// input to the blender for recording and plays what it mixes. Without an
// input device it falls back to output only.
type PortAudioBackend struct {
	src        BlockProducer
	stream     *portaudio.Stream
	sampleRate float64
	duplex     bool
}

func InitPortAudio() error {
	if err := portaudio.Initialize(); err != nil {
		return errors.Wrap(err, "unable to setup portaudio")
	}
	return nil
}

func TerminatePortAudio() {
	if err := portaudio.Terminate(); err != nil {
		logger.Warn("portaudio termination error", "err", err)
	}
}

// PortAudioSampleRate is the default rate of the default output device.
func PortAudioSampleRate() (int, error) {
	d, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return 0, errors.Wrap(err, "no default output device")
	}
	return int(d.DefaultSampleRate), nil
}

func NewPortAudioBackend(src BlockProducer, cfg Config, framesPerBuffer int) (*PortAudioBackend, error) {
	pb := &PortAudioBackend{
		src:        src,
		sampleRate: float64(cfg.SampleRate),
	}

	inputs := cfg.Channels
	if d, err := portaudio.DefaultInputDevice(); err != nil || d.MaxInputChannels < cfg.Channels {
		logger.Warn("no usable audio input, recording disabled", "err", err)
		inputs = 0
	}

	var (
		stream *portaudio.Stream
		err    error
	)
	if inputs > 0 {
		pb.duplex = true
		stream, err = portaudio.OpenDefaultStream(inputs, cfg.Channels, pb.sampleRate, framesPerBuffer, pb.processDuplex)
	} else {
		stream, err = portaudio.OpenDefaultStream(0, cfg.Channels, pb.sampleRate, framesPerBuffer, pb.processOutput)
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to open portaudio stream")
	}
	pb.stream = stream

	info := stream.Info()
	logger.Info("connected to portaudio",
		"version", portaudio.VersionText(),
		"rate", info.SampleRate,
		"output_latency", info.OutputLatency,
		"frames_per_buffer", framesPerBuffer,
		"duplex", pb.duplex,
	)

	return pb, nil
}

func (pb *PortAudioBackend) processDuplex(in, out []int16) {
	pb.src.ProduceBlock(out, in)
}

func (pb *PortAudioBackend) processOutput(out []int16) {
	pb.src.ProduceBlock(out, nil)
}

func (pb *PortAudioBackend) Start() error {
	return errors.Wrap(pb.stream.Start(), "unable to start portaudio stream")
}

func (pb *PortAudioBackend) Close() error {
	if err := pb.stream.Stop(); err != nil {
		logger.Warn("portaudio stop failed", "err", err)
	}
	return errors.Wrap(pb.stream.Close(), "unable to close portaudio stream")
}
