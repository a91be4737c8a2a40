package main

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/pkg/errors"
)

// Sample is one 16 bit PCM value, the native format of the audio drivers.
// The mix accumulates in int64 so any number of full scale loops can be
// summed before scaling back down.
type Sample = int16

const (
	MaxSample Sample = math.MaxInt16
	MinSample Sample = math.MinInt16
)

// maxBufferSamples caps the whole store at 2 GiB so that sizes in bytes
// still fit an int on 32 bit platforms.
const maxBufferSamples = math.MaxInt32 / int(unsafe.Sizeof(Sample(0)))

var (
	ErrAllocation     = errors.New("cannot allocate loop buffer")
	ErrPinUnsupported = errors.New("memory pinning not supported on this platform")
)

// LoopStore keeps every loop in one buffer, interleaved so that all loops
// for a given sample index are adjacent:
//
//	buffer[sample*(loops*channels) + loop*channels + channel]
//
// Summing one output frame then walks a single contiguous run of memory.
type LoopStore struct {
	loopCount  int
	loopLength int
	channels   int

	buffer []Sample
	pinned bool
}

func NewLoopStore(loopCount, channels, loopLength int) (*LoopStore, error) {
	if loopCount <= 0 || channels <= 0 || loopLength <= 0 {
		return nil, errors.Wrapf(ErrAllocation, "invalid dimensions %d loops x %d channels x %d samples",
			loopCount, channels, loopLength)
	}

	if loopCount > maxBufferSamples/channels || loopLength > maxBufferSamples/(loopCount*channels) {
		return nil, errors.Wrapf(ErrAllocation, "%d loops x %d channels x %d samples exceeds %d samples",
			loopCount, channels, loopLength, maxBufferSamples)
	}
	frame := loopCount * channels

	return &LoopStore{
		loopCount:  loopCount,
		loopLength: loopLength,
		channels:   channels,
		buffer:     make([]Sample, frame*loopLength),
	}, nil
}

func (ls *LoopStore) LoopCount() int  { return ls.loopCount }
func (ls *LoopStore) LoopLength() int { return ls.loopLength }
func (ls *LoopStore) Channels() int   { return ls.channels }

// Size is the buffer size in bytes.
func (ls *LoopStore) Size() int {
	return len(ls.buffer) * int(unsafe.Sizeof(Sample(0)))
}

// Offset returns the buffer index of a cell. Out of range arguments are a
// caller bug and panic.
func (ls *LoopStore) Offset(loop, sample, channel int) int {
	if uint(loop) >= uint(ls.loopCount) || uint(sample) >= uint(ls.loopLength) || uint(channel) >= uint(ls.channels) {
		panic(fmt.Sprintf("loop store: cell (loop %d, sample %d, channel %d) out of range %dx%dx%d",
			loop, sample, channel, ls.loopCount, ls.loopLength, ls.channels))
	}
	return sample*(ls.loopCount*ls.channels) + loop*ls.channels + channel
}

func (ls *LoopStore) At(loop, sample, channel int) Sample {
	return ls.buffer[ls.Offset(loop, sample, channel)]
}

func (ls *LoopStore) Set(loop, sample, channel int, v Sample) {
	ls.buffer[ls.Offset(loop, sample, channel)] = v
}

// Loop copies one channel of a loop out of the store.
func (ls *LoopStore) Loop(loop, channel int) []Sample {
	out := make([]Sample, ls.loopLength)
	for s := range out {
		out[s] = ls.At(loop, s, channel)
	}
	return out
}

// SetLoop overwrites one channel of a loop, starting at sample 0. Extra
// values are ignored, missing ones leave the old contents in place.
func (ls *LoopStore) SetLoop(loop, channel int, samples []Sample) {
	for s := 0; s < len(samples) && s < ls.loopLength; s++ {
		ls.Set(loop, s, channel, samples[s])
	}
}

func (ls *LoopStore) bytes() []byte {
	if len(ls.buffer) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&ls.buffer[0])), ls.Size())
}

// Pin locks the sample memory into RAM so the mixer never page faults.
// Correctness does not depend on it, so callers should only warn on error.
func (ls *LoopStore) Pin() error {
	if ls.pinned {
		return nil
	}
	if err := mlock(ls.bytes()); err != nil {
		return errors.Wrap(err, "failed to lock buffer memory in RAM")
	}
	ls.pinned = true
	return nil
}

func (ls *LoopStore) Unpin() error {
	if !ls.pinned {
		return nil
	}
	ls.pinned = false
	return munlock(ls.bytes())
}
