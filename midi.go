package main

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rakyll/portmidi"
	"gitlab.com/gomidi/midi/v2"
)

const (
	sustainController = 64
	velocityScale     = 128

	pollInterval = time.Millisecond
)

// MidiTranslator turns raw MIDI messages into blender events. Notes set the
// level of the loop with the same number, the sustain pedal starts and
// stops recording.
type MidiTranslator struct {
	sustain bool
}

// Translate decodes one message. ok is false for messages that do not map
// to an event, including sustain values that do not cross the pedal
// threshold.
func (t *MidiTranslator) Translate(msg midi.Message) (ev Event, ok bool) {
	var ch, key, vel, ctl, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return SetLevel(int(key), float32(vel)/velocityScale), true
	case msg.GetNoteEnd(&ch, &key):
		return SetLevel(int(key), 0), true
	case msg.GetControlChange(&ch, &ctl, &val):
		if ctl != sustainController {
			return Event{}, false
		}
		down := val > 0
		if down == t.sustain {
			return Event{}, false
		}
		t.sustain = down
		if down {
			return StartRecording(), true
		}
		return StopRecording(), true
	}
	return Event{}, false
}

func portmidiMessage(ev portmidi.Event) midi.Message {
	return midi.Message{byte(ev.Status), byte(ev.Data1), byte(ev.Data2)}
}

type MidiController struct {
	Target EventSink

	stream *portmidi.Stream
	tr     MidiTranslator

	done chan struct{}
	wg   sync.WaitGroup
}

func OpenController(id portmidi.DeviceID, target EventSink) (*MidiController, error) {
	if info := portmidi.Info(id); info != nil {
		logger.Info("opening MIDI input", "device", info.Name, "interface", info.Interface)
	}

	in, err := portmidi.NewInputStream(id, 1024)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open MIDI input %d", id)
	}

	mc := &MidiController{
		Target: target,
		stream: in,
		done:   make(chan struct{}),
	}

	mc.wg.Add(1)
	go mc.run()

	return mc, nil
}

func (mc *MidiController) Shutdown() {
	close(mc.done)
	mc.wg.Wait()
	mc.stream.Close()
}

func (mc *MidiController) run() {
	defer mc.wg.Done()

	for {
		select {
		case <-mc.done:
			return
		default:
		}

		events, err := mc.stream.Read(1024)
		if err != nil {
			logger.Error("MIDI read failed", "err", err)
			return
		}
		if len(events) == 0 {
			time.Sleep(pollInterval)
			continue
		}

		for _, event := range events {
			mc.handle(portmidiMessage(event))
		}
	}
}

func (mc *MidiController) handle(msg midi.Message) {
	ev, ok := mc.tr.Translate(msg)
	if !ok {
		logger.Debug("ignored MIDI message", "msg", msg.String())
		return
	}
	logger.Debug("MIDI event", "kind", ev.Kind, "loop", ev.Loop, "level", ev.Level)
	mc.Target.ApplyEvent(ev)
}
