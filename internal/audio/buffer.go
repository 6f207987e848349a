// Package audio holds the in-memory PCM buffer used by the muting stages
// and its WAV encoding.
package audio

import (
	"fmt"
	"math"
)

const frameEpsilon = 1e-9

// Buffer is interleaved PCM audio with samples in [-1, 1].
type Buffer struct {
	Data       []float32
	SampleRate int
	Channels   int
	// BitDepth is the source resolution, reused when the buffer is written.
	BitDepth int
}

// Frames returns the number of sample frames.
func (b Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Clone returns a deep copy.
func (b Buffer) Clone() Buffer {
	out := b
	out.Data = make([]float32, len(b.Data))
	copy(out.Data, b.Data)
	return out
}

// FrameAt returns the first frame whose time is at or after seconds,
// clamped to [0, Frames()].
func (b Buffer) FrameAt(seconds float64) int {
	frames := b.Frames()
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	// Tolerate float error so a frame landing exactly on seconds is included.
	f := math.Ceil(seconds*float64(b.SampleRate) - frameEpsilon)
	if f >= float64(frames) {
		return frames
	}
	return int(f)
}

func (b Buffer) validate() error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", b.SampleRate)
	}
	if b.Channels <= 0 {
		return fmt.Errorf("invalid channel count %d", b.Channels)
	}
	if len(b.Data)%b.Channels != 0 {
		return fmt.Errorf("sample count %d not divisible by %d channels", len(b.Data), b.Channels)
	}
	return nil
}

// Mix overlays b onto a. Both must share sample rate and channel count; the
// result is as long as the longer input and sums are clipped to [-1, 1].
func Mix(a, b Buffer) (Buffer, error) {
	if err := a.validate(); err != nil {
		return Buffer{}, fmt.Errorf("mix: first stem: %w", err)
	}
	if err := b.validate(); err != nil {
		return Buffer{}, fmt.Errorf("mix: second stem: %w", err)
	}
	if a.SampleRate != b.SampleRate {
		return Buffer{}, fmt.Errorf("mix: sample rate mismatch %d vs %d", a.SampleRate, b.SampleRate)
	}
	if a.Channels != b.Channels {
		return Buffer{}, fmt.Errorf("mix: channel mismatch %d vs %d", a.Channels, b.Channels)
	}

	longer, shorter := a, b
	if len(b.Data) > len(a.Data) {
		longer, shorter = b, a
	}
	out := longer.Clone()
	if shorter.BitDepth > out.BitDepth {
		out.BitDepth = shorter.BitDepth
	}
	for i, v := range shorter.Data {
		out.Data[i] = clip(out.Data[i] + v)
	}
	return out, nil
}

func clip(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
