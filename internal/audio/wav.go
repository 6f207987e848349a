package audio

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	defaultBitDepth = 16
	wavFormatPCM    = 1
)

// ReadWAV decodes a PCM WAV file.
func ReadWAV(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()
	buf, err := DecodeWAV(f)
	if err != nil {
		return Buffer{}, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

// DecodeWAV decodes PCM WAV data from r.
func DecodeWAV(r io.ReadSeeker) (Buffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Buffer{}, fmt.Errorf("not a valid wav file")
	}
	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("read pcm: %w", err)
	}
	if pcm.Format == nil {
		return Buffer{}, fmt.Errorf("wav has no format chunk")
	}

	depth := pcm.SourceBitDepth
	if depth <= 0 {
		depth = int(decoder.BitDepth)
	}
	scale := fullScale(depth)
	offset := 0
	if depth == 8 {
		// 8-bit PCM is unsigned.
		offset = 128
	}
	data := make([]float32, len(pcm.Data))
	for i, v := range pcm.Data {
		data[i] = float32(float64(v-offset) / scale)
	}
	buf := Buffer{
		Data:       data,
		SampleRate: pcm.Format.SampleRate,
		Channels:   pcm.Format.NumChannels,
		BitDepth:   depth,
	}
	if err := buf.validate(); err != nil {
		return Buffer{}, err
	}
	return buf, nil
}

// WriteWAV encodes buf to path as PCM WAV at the buffer's bit depth.
func WriteWAV(path string, buf Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	if err := EncodeWAV(f, buf); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}

// EncodeWAV writes buf as PCM WAV to w. Unsupported bit depths are written
// as 16-bit.
func EncodeWAV(w io.WriteSeeker, buf Buffer) error {
	if err := buf.validate(); err != nil {
		return err
	}
	depth := buf.BitDepth
	switch depth {
	case 16, 24, 32:
	default:
		depth = defaultBitDepth
	}

	scale := fullScale(depth)
	lo, hi := -scale, scale-1
	ints := make([]int, len(buf.Data))
	for i, v := range buf.Data {
		s := math.Round(float64(v) * scale)
		if s < lo {
			s = lo
		} else if s > hi {
			s = hi
		}
		ints[i] = int(s)
	}

	encoder := wav.NewEncoder(w, buf.SampleRate, depth, buf.Channels, wavFormatPCM)
	pcm := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: buf.Channels,
			SampleRate:  buf.SampleRate,
		},
		Data:           ints,
		SourceBitDepth: depth,
	}
	if err := encoder.Write(pcm); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// fullScale is the magnitude of the most negative sample at depth.
func fullScale(depth int) float64 {
	if depth <= 0 || depth > 32 {
		depth = defaultBitDepth
	}
	return float64(int64(1) << (depth - 1))
}
