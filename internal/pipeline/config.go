package pipeline

import (
	"musicclean/internal/align"
	"musicclean/internal/config"
	"musicclean/internal/mute"
)

// Config is the explicit per-coordinator configuration. It carries no
// references to global state.
type Config struct {
	// PadSeconds widens every mute window on both sides.
	PadSeconds float64
	// AlignEnabled allows reference lyrics to replace recognized words.
	AlignEnabled bool
	Align        align.Options
	// LyricsPrompt seeds transcription with the reference lyrics.
	LyricsPrompt bool

	// RunsDir holds per-run scratch directories.
	RunsDir string
	// StemsDir holds stems kept for later EDL application.
	StemsDir string
	// LocksDir holds per-input lock files.
	LocksDir string
	// KeepTemp leaves scratch directories in place after a run.
	KeepTemp bool

	// Suffix is appended to the input name when no output is given.
	Suffix string
	// Format overrides the output extension; blank keeps the input's.
	Format    string
	Bitrate   string
	Overwrite bool

	WriteLRC    bool
	EmbedLyrics bool
}

// DefaultConfig returns a Config usable for pure analysis.
func DefaultConfig() Config {
	return Config{
		PadSeconds:   mute.DefaultPad,
		AlignEnabled: true,
		Align:        align.DefaultOptions(),
		Suffix:       " (clean)",
	}
}

// ConfigFrom derives the coordinator configuration from loaded settings.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		PadSeconds:   cfg.PadSeconds(),
		AlignEnabled: cfg.Alignment.Enabled,
		Align:        cfg.AlignOptions(),
		LyricsPrompt: cfg.Transcription.LyricsPrompt,
		RunsDir:      cfg.RunsDir(),
		StemsDir:     cfg.StemsDir(),
		LocksDir:     cfg.LocksDir(),
		Suffix:       cfg.Output.Suffix,
		Format:       cfg.Output.Format,
		Bitrate:      cfg.Output.Bitrate,
		Overwrite:    cfg.Output.Overwrite,
		WriteLRC:     cfg.Output.WriteLRC,
		EmbedLyrics:  cfg.Output.EmbedLyrics,
	}
}
