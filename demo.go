package main

import (
	"sync"
	"time"
)

// Demo walks through a list of loops, bringing each one up for one step and
// dropping it again, like a player pressing keys in turn. It can run on a
// wall clock (Run) or be stepped by a renderer (Advance).
type Demo struct {
	loops    []int
	level    float32
	duration time.Duration

	target EventSink

	cur  int
	done chan struct{}
	once sync.Once
}

func NewDemo(target EventSink, loops []int, level float32, step time.Duration) *Demo {
	return &Demo{
		loops:    loops,
		level:    level,
		duration: step,
		target:   target,
		cur:      -1,
		done:     make(chan struct{}),
	}
}

// Advance releases the current loop and triggers the next one.
func (d *Demo) Advance() {
	if len(d.loops) == 0 {
		return
	}
	if d.cur >= 0 {
		d.target.ApplyEvent(SetLevel(d.loops[d.cur], 0))
	}
	d.cur = (d.cur + 1) % len(d.loops)
	d.target.ApplyEvent(SetLevel(d.loops[d.cur], d.level))
}

func (d *Demo) Run() {
	tick := time.NewTicker(d.duration)
	defer tick.Stop()

	d.Advance()
	for {
		select {
		case <-d.done:
			if d.cur >= 0 {
				d.target.ApplyEvent(SetLevel(d.loops[d.cur], 0))
			}
			return
		case <-tick.C:
			d.Advance()
		}
	}
}

// Stepper returns a block callback for Render that advances the demo once
// per step of sample time. At very low rates a step is still at least one
// frame long.
func (d *Demo) Stepper(sampleRate int) func(frame int) {
	stepFrames := max(int(int64(d.duration)*int64(sampleRate)/int64(time.Second)), 1)
	next := 0
	return func(frame int) {
		for frame >= next {
			d.Advance()
			next += stepFrames
		}
	}
}

func (d *Demo) Stop() {
	d.once.Do(func() { close(d.done) })
}

// chord loops, treated as note numbers: a C major arpeggio around middle C
var demoLoops = []int{60, 64, 67, 72}

// demoPattern keeps only the demo loops that exist.
func demoPattern(loopCount int) []int {
	var loops []int
	for _, l := range demoLoops {
		if l < loopCount {
			loops = append(loops, l)
		}
	}
	if len(loops) == 0 {
		for l := 0; l < loopCount && l < 4; l++ {
			loops = append(loops, l)
		}
	}
	return loops
}
