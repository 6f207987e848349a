// Package ffmpeg encodes the remixed track into the output container while
// carrying over the source file's tags.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"musicclean/internal/services"
)

// Command is the ffmpeg binary name.
const Command = "ffmpeg"

const tempMarker = ".musicclean-tmp"

// DefaultBitrate applies to lossy formats when none is configured.
const DefaultBitrate = "320k"

type codec struct {
	name      string
	lossy     bool
	coverArt  bool
	extraArgs []string
}

var codecs = map[string]codec{
	"mp3":  {name: "libmp3lame", lossy: true, coverArt: true, extraArgs: []string{"-id3v2_version", "3"}},
	"flac": {name: "flac", coverArt: true},
	"wav":  {name: "pcm_s16le"},
	"ogg":  {name: "libvorbis", lossy: true},
	"opus": {name: "libopus", lossy: true},
	"m4a":  {name: "aac", lossy: true, coverArt: true},
}

// Supported reports whether format (an extension without dot) can be written.
func Supported(format string) bool {
	_, ok := codecs[normalizeFormat(format)]
	return ok
}

// Formats lists the writable formats.
func Formats() []string {
	return []string{"flac", "m4a", "mp3", "ogg", "opus", "wav"}
}

// Request describes one encode.
type Request struct {
	// Mix is the remixed WAV to encode.
	Mix string
	// Source is the original track; its tags and cover art are copied.
	Source string
	// Output is the destination; its extension selects the codec.
	Output string
	// Bitrate applies to lossy codecs.
	Bitrate string
	// Lyrics is embedded as the lyrics tag when non-empty.
	Lyrics string
}

// Encoder runs ffmpeg.
type Encoder struct {
	binary        string
	commandRunner services.CommandRunner
}

// NewEncoder returns an encoder using binary, or "ffmpeg" when blank.
func NewEncoder(binary string) *Encoder {
	if strings.TrimSpace(binary) == "" {
		binary = Command
	}
	return &Encoder{binary: binary, commandRunner: services.ExecRunner()}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Encoder) WithCommandRunner(runner services.CommandRunner) {
	e.commandRunner = runner
}

// Encode writes req.Output. ffmpeg writes to a temporary sibling that is
// renamed into place on success, so Output may equal Source.
func (e *Encoder) Encode(ctx context.Context, req Request) error {
	format := normalizeFormat(filepath.Ext(req.Output))
	if _, ok := codecs[format]; !ok {
		return fmt.Errorf("encode: unsupported output format %q", format)
	}
	if req.Mix == "" || req.Source == "" {
		return fmt.Errorf("encode: mix and source paths required")
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return fmt.Errorf("encode: ensure output dir: %w", err)
	}

	temp := TempPath(req.Output)
	if err := e.commandRunner(ctx, e.binary, BuildArgs(req, temp)...); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("ffmpeg: %w", err)
	}
	if err := os.Rename(temp, req.Output); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("encode: move output into place: %w", err)
	}
	return nil
}

// TempPath returns the scratch file ffmpeg writes before the final rename.
// The extension is kept so ffmpeg can infer the container.
func TempPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + tempMarker + ext
}

// BuildArgs returns the ffmpeg arguments encoding req into dest.
func BuildArgs(req Request, dest string) []string {
	c := codecs[normalizeFormat(filepath.Ext(req.Output))]
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", req.Mix,
		"-i", req.Source,
		"-map", "0:a",
	}
	if c.coverArt {
		args = append(args, "-map", "1:v?", "-c:v", "copy")
	}
	args = append(args, "-map_metadata", "1", "-c:a", c.name)
	if c.lossy {
		bitrate := strings.TrimSpace(req.Bitrate)
		if bitrate == "" {
			bitrate = DefaultBitrate
		}
		args = append(args, "-b:a", bitrate)
	}
	args = append(args, c.extraArgs...)
	if lyrics := strings.TrimSpace(req.Lyrics); lyrics != "" {
		args = append(args, "-metadata", "lyrics="+lyrics)
	}
	return append(args, dest)
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}
