package main

import (
	"testing"

	"github.com/rakyll/portmidi"
	"gitlab.com/gomidi/midi/v2"
)

type eventLog []Event

func (l *eventLog) ApplyEvent(ev Event) {
	*l = append(*l, ev)
}

func TestTranslateNotes(t *testing.T) {
	var tr MidiTranslator

	ev, ok := tr.Translate(midi.NoteOn(0, 5, 64))
	if !ok || ev != SetLevel(5, 0.5) {
		t.Fatalf("note on: got %+v %v", ev, ok)
	}

	ev, ok = tr.Translate(midi.NoteOn(3, 70, 0))
	if !ok || ev != SetLevel(70, 0) {
		t.Fatalf("note on with zero velocity: got %+v %v", ev, ok)
	}

	ev, ok = tr.Translate(midi.NoteOff(9, 12))
	if !ok || ev != SetLevel(12, 0) {
		t.Fatalf("note off: got %+v %v", ev, ok)
	}

	if _, ok := tr.Translate(midi.ProgramChange(0, 3)); ok {
		t.Fatal("program change should not produce an event")
	}
	if _, ok := tr.Translate(midi.ControlChange(0, 7, 100)); ok {
		t.Fatal("volume controller should not produce an event")
	}
}

func TestTranslateSustain(t *testing.T) {
	var tr MidiTranslator
	var got []EventKind
	for _, v := range []uint8{0, 127, 100, 127, 0, 0, 64} {
		if ev, ok := tr.Translate(midi.ControlChange(0, sustainController, v)); ok {
			got = append(got, ev.Kind)
		}
	}

	exp := []EventKind{EventStartRecording, EventStopRecording, EventStartRecording}
	if len(got) != len(exp) {
		t.Fatalf("got %v, expected %v", got, exp)
	}
	for i := range exp {
		if got[i] != exp[i] {
			t.Fatalf("got %v, expected %v", got, exp)
		}
	}
}

func TestControllerDrivesBlender(t *testing.T) {
	b := newTestBlender(t, 16, 8, 1)
	mc := &MidiController{Target: b}

	for _, ev := range []portmidi.Event{
		{Status: 0x90, Data1: 5, Data2: 102},
		{Status: 0x91, Data1: 40, Data2: 127}, // beyond loop count
		{Status: 0xb0, Data1: 64, Data2: 127},
	} {
		mc.handle(portmidiMessage(ev))
	}

	if lvl := b.Level(5); lvl != 102.0/128 {
		t.Fatalf("loop 5 level %f", lvl)
	}
	if tgt, ok := b.RecordingTarget(); !ok || tgt != 5 {
		t.Fatalf("expected recording into loop 5, got %d %v", tgt, ok)
	}

	mc.handle(portmidiMessage(portmidi.Event{Status: 0x80, Data1: 5}))
	mc.handle(portmidiMessage(portmidi.Event{Status: 0xb0, Data1: 64}))
	if lvl := b.Level(5); lvl != 0 {
		t.Fatalf("loop 5 should be silent after note off, got %f", lvl)
	}
	if _, ok := b.RecordingTarget(); ok {
		t.Fatal("recording should have stopped with the pedal")
	}
}

func TestControllerForwardsEvents(t *testing.T) {
	var log eventLog
	mc := &MidiController{Target: &log}
	mc.handle(midi.NoteOn(0, 60, 32))
	mc.handle(midi.ProgramChange(0, 100))

	if len(log) != 1 || log[0] != SetLevel(60, 0.25) {
		t.Fatalf("unexpected events %+v", log)
	}
}

func TestToggleRecordingFollowsPedal(t *testing.T) {
	b := newTestBlender(t, 10, 16, 1)
	mc := &MidiController{Target: b}

	// nothing triggered yet: the first press cannot start anything, and the
	// second one must still try to start rather than stop
	ToggleRecording(b, b)
	ToggleRecording(b, b)
	if _, ok := b.RecordingTarget(); ok {
		t.Fatal("recording without a triggered loop")
	}

	mc.handle(midi.NoteOn(0, 2, 100))
	ToggleRecording(b, b)
	if tgt, ok := b.RecordingTarget(); !ok || tgt != 2 {
		t.Fatalf("expected recording into loop 2, got %d %v", tgt, ok)
	}

	// the pedal stops recording behind the keyboard's back, the next press
	// starts it again
	mc.handle(midi.ControlChange(0, sustainController, 127))
	mc.handle(midi.ControlChange(0, sustainController, 0))
	ToggleRecording(b, b)
	if _, ok := b.RecordingTarget(); !ok {
		t.Fatal("toggle after pedal release should start recording")
	}

	mc.handle(midi.ControlChange(0, sustainController, 127))
	ToggleRecording(b, b)
	if _, ok := b.RecordingTarget(); ok {
		t.Fatal("toggle while the pedal holds recording should stop it")
	}
}
