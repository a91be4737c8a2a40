package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/pkg/errors"
)

var errExit = errors.New("exit")

var consoleCommands = []prompt.Suggest{
	{Text: "level", Description: "level <loop> <0..1>: set a loop's level"},
	{Text: "on", Description: "on <loop>: full level"},
	{Text: "off", Description: "off <loop>: silence a loop"},
	{Text: "rec", Description: "record into the last triggered loop"},
	{Text: "stop", Description: "stop recording"},
	{Text: "status", Description: "show position, levels and recording state"},
	{Text: "help", Description: "list commands"},
	{Text: "exit", Description: "quit"},
}

// Console issues events typed by hand.
type Console struct {
	b    *Blender
	sink EventSink
}

func NewConsole(b *Blender, sink EventSink) *Console {
	return &Console{b: b, sink: sink}
}

func (c *Console) Run() {
	completer := func(d prompt.Document) []prompt.Suggest {
		if strings.Contains(d.TextBeforeCursor(), " ") {
			return nil
		}
		return prompt.FilterHasPrefix(consoleCommands, d.GetWordBeforeCursor(), true)
	}

	for {
		t := prompt.Input("> ", completer)
		err := c.ProcessCmd(t)
		if err == errExit {
			return
		}
		if err != nil {
			fmt.Println("ERROR: ", err)
		}
	}
}

func (c *Console) ProcessCmd(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "level":
		if len(fields) != 3 {
			return errors.New("usage: level <loop> <0..1>")
		}
		loop, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Wrap(err, "bad loop number")
		}
		lvl, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return errors.Wrap(err, "bad level")
		}
		return c.setLevel(loop, float32(lvl))
	case "on", "off":
		if len(fields) != 2 {
			return errors.Errorf("usage: %s <loop>", fields[0])
		}
		loop, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Wrap(err, "bad loop number")
		}
		var lvl float32
		if fields[0] == "on" {
			lvl = 1
		}
		return c.setLevel(loop, lvl)
	case "rec":
		c.sink.ApplyEvent(StartRecording())
		if _, ok := c.b.RecordingTarget(); !ok {
			fmt.Println("no loop triggered yet, nothing to record into")
		}
	case "stop":
		c.sink.ApplyEvent(StopRecording())
	case "status":
		c.printStatus()
	case "help":
		for _, s := range consoleCommands {
			fmt.Printf("  %-7s %s\n", s.Text, s.Description)
		}
	case "exit", "quit":
		return errExit
	default:
		return errors.Errorf("unknown command %q", fields[0])
	}
	return nil
}

func (c *Console) setLevel(loop int, lvl float32) error {
	if loop < 0 || loop >= c.b.Config().LoopCount {
		return errors.Errorf("loop %d out of range [0,%d)", loop, c.b.Config().LoopCount)
	}
	c.sink.ApplyEvent(SetLevel(loop, lvl))
	return nil
}

func (c *Console) printStatus() {
	cfg := c.b.Config()
	fmt.Printf("position %d/%d\n", c.b.Position(), cfg.LoopLength)
	for l := 0; l < cfg.LoopCount; l++ {
		if lvl := c.b.Level(l); lvl != 0 {
			fmt.Printf("  loop %3d  %s (%.2f)\n", l, noteToString(l), lvl)
		}
	}
	if t, ok := c.b.RecordingTarget(); ok {
		fmt.Printf("recording into loop %d\n", t)
	}
	if t, ok := c.b.LastTriggered(); ok {
		fmt.Printf("last triggered loop %d\n", t)
	}
}

var vals = []string{
	"C",
	"C#",
	"D",
	"Eb",
	"E",
	"F",
	"F#",
	"G",
	"G#",
	"A",
	"Bb",
	"B",
}

func noteToString(note int) string {
	return vals[note%len(vals)] + strconv.Itoa(note/12-1)
}
