package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    []string
		notWant []string
	}{
		{
			name:    "mp3 with default bitrate",
			req:     Request{Mix: "mix.wav", Source: "in.mp3", Output: "out.mp3"},
			want:    []string{"libmp3lame", "-b:a", DefaultBitrate, "-map_metadata", "1:v?", "-id3v2_version"},
			notWant: []string{"-metadata"},
		},
		{
			name:    "flac is lossless",
			req:     Request{Mix: "mix.wav", Source: "in.flac", Output: "out.FLAC", Bitrate: "192k"},
			want:    []string{"flac", "1:v?"},
			notWant: []string{"-b:a", "192k"},
		},
		{
			name:    "wav has no cover art",
			req:     Request{Mix: "mix.wav", Source: "in.wav", Output: "out.wav"},
			want:    []string{"pcm_s16le"},
			notWant: []string{"1:v?"},
		},
		{
			name: "lyrics embedded",
			req:  Request{Mix: "mix.wav", Source: "in.mp3", Output: "out.ogg", Bitrate: "256k", Lyrics: "[00:01.00]hello"},
			want: []string{"libvorbis", "256k", "-metadata", "lyrics=[00:01.00]hello"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := BuildArgs(tc.req, "dest")
			if args[len(args)-1] != "dest" {
				t.Fatalf("destination must be last: %v", args)
			}
			for _, w := range tc.want {
				if !slices.Contains(args, w) {
					t.Fatalf("args missing %q: %v", w, args)
				}
			}
			for _, nw := range tc.notWant {
				if slices.Contains(args, nw) {
					t.Fatalf("args unexpectedly contain %q: %v", nw, args)
				}
			}
		})
	}
}

func TestEncodeRenamesIntoPlace(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "nested", "song (clean).mp3")

	enc := NewEncoder("")
	var gotBinary string
	enc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotBinary = name
		return os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644)
	})

	err := enc.Encode(context.Background(), Request{Mix: "mix.wav", Source: "song.mp3", Output: output})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if gotBinary != Command {
		t.Fatalf("binary = %q", gotBinary)
	}
	data, err := os.ReadFile(output)
	if err != nil || string(data) != "encoded" {
		t.Fatalf("output not in place: %v %q", err, data)
	}
	if _, err := os.Stat(TempPath(output)); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestEncodeFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "song.flac")
	enc := NewEncoder("ffmpeg")
	enc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		return errors.New("exit status 1")
	})
	if err := enc.Encode(context.Background(), Request{Mix: "m.wav", Source: "s.flac", Output: output}); err == nil {
		t.Fatal("expected error")
	}
	for _, path := range []string{output, TempPath(output)} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("%s should not exist: %v", path, err)
		}
	}
}

func TestEncodeRejectsUnsupportedFormat(t *testing.T) {
	enc := NewEncoder("")
	enc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		t.Fatal("runner should not be called")
		return nil
	})
	if err := enc.Encode(context.Background(), Request{Mix: "m.wav", Source: "s.mp3", Output: "out.xyz"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestSupported(t *testing.T) {
	for _, f := range Formats() {
		if !Supported(f) || !Supported("."+f) {
			t.Fatalf("format %q should be supported", f)
		}
	}
	if Supported("aiff") {
		t.Fatal("aiff should not be supported")
	}
}

func TestTempPath(t *testing.T) {
	if got := TempPath("/a/song.mp3"); got != "/a/song.musicclean-tmp.mp3" {
		t.Fatalf("TempPath = %q", got)
	}
}
