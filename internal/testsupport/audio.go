package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"musicclean/internal/audio"
)

// ToneBuffer returns a stereo 16-bit buffer holding a 440 Hz tone at half
// scale for the given duration.
func ToneBuffer(rate int, seconds float64) audio.Buffer {
	const channels = 2
	frames := int(math.Round(float64(rate) * seconds))
	data := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			data[i*channels+c] = v
		}
	}
	return audio.Buffer{Data: data, SampleRate: rate, Channels: channels, BitDepth: 16}
}

// WriteWAV writes buf to path, creating parent directories.
func WriteWAV(t testing.TB, path string, buf audio.Buffer) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := audio.WriteWAV(path, buf); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}

// ReadWAV decodes path or fails the test.
func ReadWAV(t testing.TB, path string) audio.Buffer {
	t.Helper()
	buf, err := audio.ReadWAV(path)
	if err != nil {
		t.Fatalf("read wav %s: %v", path, err)
	}
	return buf
}
