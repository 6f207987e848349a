// Package mute turns matched words into padded, merged mute windows and
// silences those windows in an audio buffer.
package mute

import (
	"fmt"
	"math"
	"sort"

	"musicclean/internal/audio"
	"musicclean/internal/words"
)

// DefaultPad is the padding applied on each side of a matched word.
const DefaultPad = 0.05

// Interval is a half-open window [Start, End) in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the window length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

func (iv Interval) String() string {
	return fmt.Sprintf("%.3fs-%.3fs", iv.Start, iv.End)
}

// Total returns the combined length of intervals.
func Total(intervals []Interval) float64 {
	var total float64
	for _, iv := range intervals {
		total += iv.Duration()
	}
	return total
}

// Build pads each timed token by pad seconds on both sides, clamps the
// start at zero, drops empty windows, and merges windows that overlap or
// touch. The result is sorted, and each window starts strictly after the
// previous one ends.
func Build(matched []words.Token, pad float64) []Interval {
	if pad < 0 || math.IsNaN(pad) || math.IsInf(pad, 0) {
		pad = 0
	}
	windows := make([]Interval, 0, len(matched))
	for _, tok := range matched {
		if !tok.Timed {
			continue
		}
		iv := Interval{Start: math.Max(0, tok.Start-pad), End: math.Max(0, tok.End+pad)}
		if iv.End <= iv.Start {
			continue
		}
		windows = append(windows, iv)
	}
	return merge(windows)
}

func merge(windows []Interval) []Interval {
	if len(windows) == 0 {
		return nil
	}
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Start < windows[j].Start
	})
	out := []Interval{windows[0]}
	for _, iv := range windows[1:] {
		last := &out[len(out)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Apply returns a copy of buf with every frame inside an interval set to
// silence on all channels. A frame i is silenced when
// start <= i/rate < end. Bounds outside the buffer are clamped.
func Apply(buf audio.Buffer, intervals []Interval) audio.Buffer {
	out := buf.Clone()
	if out.Channels <= 0 || out.SampleRate <= 0 {
		return out
	}
	for _, iv := range intervals {
		first := out.FrameAt(iv.Start)
		last := out.FrameAt(iv.End)
		for i := first * out.Channels; i < last*out.Channels; i++ {
			out.Data[i] = 0
		}
	}
	return out
}
