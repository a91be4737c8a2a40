package main

import "testing"

func TestConsoleCommands(t *testing.T) {
	b := newTestBlender(t, 10, 16, 1)
	c := NewConsole(b, b)

	for _, cmd := range []string{"level 3 0.5", "on 4", "rec", "", "status"} {
		if err := c.ProcessCmd(cmd); err != nil {
			t.Fatalf("%q: %v", cmd, err)
		}
	}
	if b.Level(3) != 0.5 || b.Level(4) != 1 {
		t.Fatalf("levels %f %f", b.Level(3), b.Level(4))
	}
	if tgt, ok := b.RecordingTarget(); !ok || tgt != 4 {
		t.Fatalf("recording into %d %v", tgt, ok)
	}

	if err := c.ProcessCmd("off 4"); err != nil {
		t.Fatal(err)
	}
	if err := c.ProcessCmd("stop"); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.RecordingTarget(); ok || b.Level(4) != 0 {
		t.Fatal("off/stop had no effect")
	}

	if err := c.ProcessCmd("exit"); err != errExit {
		t.Fatalf("exit returned %v", err)
	}
}

func TestConsoleErrors(t *testing.T) {
	b := newTestBlender(t, 10, 16, 1)
	c := NewConsole(b, b)

	for _, cmd := range []string{"level 3", "level x 1", "level 3 loud", "on 10", "off", "bogus"} {
		if err := c.ProcessCmd(cmd); err == nil {
			t.Errorf("%q should fail", cmd)
		}
	}
}

func TestNoteToString(t *testing.T) {
	for note, name := range map[int]string{60: "C4", 69: "A4", 0: "C-1", 70: "Bb4"} {
		if got := noteToString(note); got != name {
			t.Errorf("noteToString(%d) = %q, expected %q", note, got, name)
		}
	}
}
