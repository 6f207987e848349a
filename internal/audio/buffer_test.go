package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestFramesAndDuration(t *testing.T) {
	buf := Buffer{Data: make([]float32, 200), SampleRate: 100, Channels: 2}
	if buf.Frames() != 100 {
		t.Fatalf("Frames() = %d, want 100", buf.Frames())
	}
	if buf.Duration() != 1 {
		t.Fatalf("Duration() = %v, want 1", buf.Duration())
	}
	if (Buffer{}).Frames() != 0 || (Buffer{}).Duration() != 0 {
		t.Fatal("zero buffer should be empty")
	}
}

func TestFrameAt(t *testing.T) {
	buf := Buffer{Data: make([]float32, 100), SampleRate: 100, Channels: 1}
	tests := []struct {
		seconds float64
		want    int
	}{
		{-1, 0},
		{0, 0},
		{0.5, 50},
		{0.505, 51},
		{2, 100},
		{math.NaN(), 0},
	}
	for _, tc := range tests {
		if got := buf.FrameAt(tc.seconds); got != tc.want {
			t.Fatalf("FrameAt(%v) = %d, want %d", tc.seconds, got, tc.want)
		}
	}
}

func TestClone(t *testing.T) {
	buf := Buffer{Data: []float32{0.5, -0.5}, SampleRate: 8000, Channels: 1}
	clone := buf.Clone()
	clone.Data[0] = 0
	if buf.Data[0] != 0.5 {
		t.Fatal("Clone shares sample storage")
	}
}

func TestMix(t *testing.T) {
	vocals := Buffer{Data: []float32{0.25, 0.25, 0.9, 0.9}, SampleRate: 10, Channels: 2, BitDepth: 16}
	music := Buffer{Data: []float32{0.5, -0.5, 0.5, -0.5, 0.1, 0.1}, SampleRate: 10, Channels: 2, BitDepth: 24}

	mixed, err := Mix(vocals, music)
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	want := []float32{0.75, -0.25, 1, 0.4, 0.1, 0.1}
	if len(mixed.Data) != len(want) {
		t.Fatalf("mixed length = %d, want %d", len(mixed.Data), len(want))
	}
	for i := range want {
		if math.Abs(float64(mixed.Data[i]-want[i])) > 1e-6 {
			t.Fatalf("sample %d = %v, want %v", i, mixed.Data[i], want[i])
		}
	}
	if mixed.BitDepth != 24 {
		t.Fatalf("BitDepth = %d, want 24", mixed.BitDepth)
	}
	if music.Data[0] != 0.5 {
		t.Fatal("Mix modified its input")
	}
}

func TestMixRejectsMismatch(t *testing.T) {
	a := Buffer{Data: []float32{0, 0}, SampleRate: 44100, Channels: 2}
	tests := []Buffer{
		{Data: []float32{0, 0}, SampleRate: 48000, Channels: 2},
		{Data: []float32{0, 0}, SampleRate: 44100, Channels: 1},
		{Data: []float32{0, 0, 0}, SampleRate: 44100, Channels: 2},
		{Data: []float32{0, 0}, SampleRate: 0, Channels: 2},
	}
	for i, b := range tests {
		if _, err := Mix(a, b); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestWAVRoundTrip(t *testing.T) {
	for _, depth := range []int{16, 24} {
		src := Buffer{
			Data:       []float32{0, 0.5, -0.5, 0.25, -1, 0.999, 0, 0},
			SampleRate: 22050,
			Channels:   2,
			BitDepth:   depth,
		}
		path := filepath.Join(t.TempDir(), "roundtrip.wav")
		if err := WriteWAV(path, src); err != nil {
			t.Fatalf("%d-bit WriteWAV: %v", depth, err)
		}
		got, err := ReadWAV(path)
		if err != nil {
			t.Fatalf("%d-bit ReadWAV: %v", depth, err)
		}
		if got.SampleRate != src.SampleRate || got.Channels != src.Channels || got.BitDepth != depth {
			t.Fatalf("%d-bit format = %d Hz %d ch %d bit", depth, got.SampleRate, got.Channels, got.BitDepth)
		}
		if len(got.Data) != len(src.Data) {
			t.Fatalf("%d-bit length = %d, want %d", depth, len(got.Data), len(src.Data))
		}
		tolerance := 1.0 / fullScale(depth)
		for i := range src.Data {
			if math.Abs(float64(got.Data[i]-src.Data[i])) > tolerance {
				t.Fatalf("%d-bit sample %d = %v, want %v", depth, i, got.Data[i], src.Data[i])
			}
		}
		if got.Data[0] != 0 || got.Data[6] != 0 {
			t.Fatalf("%d-bit silence not preserved exactly", depth)
		}
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("definitely not a riff file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadWAV(path); err == nil {
		t.Fatal("expected error for invalid wav")
	}
	if _, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing wav")
	}
}

func TestWriteWAVUnsupportedDepthFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.wav")
	src := Buffer{Data: []float32{0.5}, SampleRate: 8000, Channels: 1, BitDepth: 12}
	if err := WriteWAV(path, src); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	got, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if got.BitDepth != 16 {
		t.Fatalf("BitDepth = %d, want 16", got.BitDepth)
	}
}
