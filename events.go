package main

import (
	"fmt"
	"math"
)

type EventKind uint8

const (
	EventSetLevel EventKind = iota
	EventStartRecording
	EventStopRecording
)

func (k EventKind) String() string {
	switch k {
	case EventSetLevel:
		return "set-level"
	case EventStartRecording:
		return "start-recording"
	case EventStopRecording:
		return "stop-recording"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event is a trigger for the blender. Loop and Level are only meaningful
// for EventSetLevel.
type Event struct {
	Kind  EventKind
	Loop  int
	Level float32
}

func SetLevel(loop int, level float32) Event {
	return Event{Kind: EventSetLevel, Loop: loop, Level: level}
}

func StartRecording() Event {
	return Event{Kind: EventStartRecording}
}

func StopRecording() Event {
	return Event{Kind: EventStopRecording}
}

// EventSink is implemented by anything that consumes triggers; the MIDI,
// keyboard, console and demo drivers only know about this.
type EventSink interface {
	ApplyEvent(Event)
}

var _ EventSink = (*Blender)(nil)

// ApplyEvent changes levels and recording state. It never blocks and is
// safe to call concurrently with ProduceBlock.
func (b *Blender) ApplyEvent(ev Event) {
	switch ev.Kind {
	case EventSetLevel:
		// controllers may send more notes than there are loops
		if ev.Loop < 0 || ev.Loop >= len(b.levels) {
			return
		}
		lvl := levelToFixed(ev.Level)
		b.levels[ev.Loop].Store(lvl)
		if lvl != 0 {
			b.lastTriggered.Store(int32(ev.Loop))
		}
	case EventStartRecording:
		// nothing has been triggered yet: nothing to record into
		if t := b.lastTriggered.Load(); t != noLoop {
			b.recordTarget.Store(t)
		}
	case EventStopRecording:
		b.recordTarget.Store(noLoop)
	}
}

// ToggleRecording stops recording if the blender is recording, otherwise
// starts it. The state is read back from b, so other trigger sources
// (such as the sustain pedal) are taken into account.
func ToggleRecording(b *Blender, sink EventSink) {
	if _, recording := b.RecordingTarget(); recording {
		sink.ApplyEvent(StopRecording())
	} else {
		sink.ApplyEvent(StartRecording())
	}
}

func levelToFixed(level float32) int32 {
	if math.IsNaN(float64(level)) || level <= 0 {
		return 0
	}
	if level >= 1 {
		return FullLevel
	}
	return int32(level * FullLevel)
}
