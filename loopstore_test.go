package main

import (
	"errors"
	"math"
	"testing"
)

func TestOffsetLayout(t *testing.T) {
	ls, err := NewLoopStore(3, 2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ls.buffer) != 3*2*5 {
		t.Fatalf("buffer has %d samples", len(ls.buffer))
	}

	seen := make(map[int]bool)
	for s := 0; s < 5; s++ {
		for l := 0; l < 3; l++ {
			for c := 0; c < 2; c++ {
				off := ls.Offset(l, s, c)
				if off != s*6+l*2+c {
					t.Fatalf("Offset(%d,%d,%d) = %d", l, s, c, off)
				}
				if seen[off] {
					t.Fatalf("offset %d used twice", off)
				}
				seen[off] = true
			}
		}
	}
}

func TestOffsetOutOfRangePanics(t *testing.T) {
	ls, err := NewLoopStore(3, 1, 5)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range [][3]int{{3, 0, 0}, {0, 5, 0}, {0, 0, 1}, {-1, 0, 0}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Offset%v did not panic", c)
				}
			}()
			ls.Offset(c[0], c[1], c[2])
		}()
	}
}

func TestLoopCopy(t *testing.T) {
	ls, err := NewLoopStore(2, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	ls.SetLoop(1, 0, []Sample{9, 8, 7, 6, 5})
	got := ls.Loop(1, 0)
	for i, v := range []Sample{9, 8, 7, 6} {
		if got[i] != v {
			t.Fatalf("sample %d: %d != %d", i, got[i], v)
		}
	}
	for _, v := range ls.Loop(0, 0) {
		if v != 0 {
			t.Fatal("loop 0 should still be silent")
		}
	}
}

func TestAllocationErrors(t *testing.T) {
	for _, dims := range [][3]int{
		{0, 1, 1}, {1, 0, 1}, {1, 1, -4},
		{math.MaxInt / 2, 4, 4}, {4, 4, math.MaxInt / 8},
		{1, 1, math.MaxInt / 4}, {100, 1, math.MaxInt32},
	} {
		_, err := NewLoopStore(dims[0], dims[1], dims[2])
		if !errors.Is(err, ErrAllocation) {
			t.Errorf("NewLoopStore%v: expected ErrAllocation, got %v", dims, err)
		}
	}
}

func TestPin(t *testing.T) {
	ls, err := NewLoopStore(4, 1, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if ls.Size() != 4*1024*2 {
		t.Fatalf("size %d", ls.Size())
	}

	// RLIMIT_MEMLOCK may be tiny in CI, pinning is best effort
	if err := ls.Pin(); err != nil {
		t.Skipf("cannot pin: %v", err)
	}
	if err := ls.Unpin(); err != nil {
		t.Fatal(err)
	}
}
