package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// Filter contains profanity list and muting configuration.
type Filter struct {
	// ProfanityList is a word list file; blank uses the built-in list.
	ProfanityList string `toml:"profanity_list"`
	// PadMS widens every mute window on both sides.
	PadMS      int      `toml:"pad_ms"`
	ExtraWords []string `toml:"extra_words"`
	AllowWords []string `toml:"allow_words"`
}

// Alignment contains reference-lyrics alignment configuration.
type Alignment struct {
	Enabled       bool    `toml:"enabled"`
	MinMatchRatio float64 `toml:"min_match_ratio"`
	MaxCells      int     `toml:"max_cells"`
	Phonetic      bool    `toml:"phonetic"`
}

// Separation contains Demucs stem separation configuration.
type Separation struct {
	Python string `toml:"python"`
	Model  string `toml:"model"`
	Device string `toml:"device"`
}

// Transcription contains WhisperX configuration.
type Transcription struct {
	Model       string `toml:"model"`
	Language    string `toml:"language"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
	// LyricsPrompt seeds WhisperX with the supplied lyrics.
	LyricsPrompt bool `toml:"lyrics_prompt"`
}

// Output contains encoding and sidecar configuration.
type Output struct {
	Suffix string `toml:"suffix"`
	// Format is an output extension; blank keeps the input's format.
	Format      string `toml:"format"`
	Bitrate     string `toml:"bitrate"`
	Overwrite   bool   `toml:"overwrite"`
	WriteLRC    bool   `toml:"write_lrc"`
	EmbedLyrics bool   `toml:"embed_lyrics"`
}

// Notifications configures ntfy push messages for finished batches.
type Notifications struct {
	// NtfyTopic is the full topic URL; blank disables notifications.
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	// MinFiles suppresses notifications for batches smaller than this.
	MinFiles int `toml:"min_files"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for musicclean.
//
// Configuration sections by subsystem:
//   - Paths: work, log, and history locations
//   - Filter: profanity list and mute padding
//   - Alignment: reference lyrics alignment
//   - Separation: Demucs stem separation
//   - Transcription: WhisperX transcription
//   - Output: encoding and sidecar files
//   - Notifications: ntfy batch notifications
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Filter        Filter        `toml:"filter"`
	Alignment     Alignment     `toml:"alignment"`
	Separation    Separation    `toml:"separation"`
	Transcription Transcription `toml:"transcription"`
	Output        Output        `toml:"output"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file next to the config file or in the
// working directory is loaded first; existing environment variables win.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadEnvFiles(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func loadEnvFiles(configDir string) error {
	candidates := []string{filepath.Join(configDir, ".env")}
	if cwd, err := os.Getwd(); err == nil && cwd != configDir {
		candidates = append(candidates, filepath.Join(cwd, ".env"))
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return fmt.Errorf("load env file %s: %w", candidate, err)
		}
	}
	return nil
}

// EnsureDirectories creates the work and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, filepath.Dir(c.Paths.HistoryDB)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StemsDir returns where separated stems are kept for later EDL application.
func (c *Config) StemsDir() string {
	return filepath.Join(c.Paths.WorkDir, "stems")
}

// LocksDir returns where per-input processing locks live.
func (c *Config) LocksDir() string {
	return filepath.Join(c.Paths.WorkDir, "locks")
}

// RunsDir returns the parent of per-run scratch directories.
func (c *Config) RunsDir() string {
	return filepath.Join(c.Paths.WorkDir, "runs")
}

// PadSeconds returns the mute padding in seconds.
func (c *Config) PadSeconds() float64 {
	return float64(c.Filter.PadMS) / 1000
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// UVXBinary returns the uv tool runner used to launch WhisperX.
func (c *Config) UVXBinary() string {
	return "uvx"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// MarshalEffective renders the loaded configuration as TOML with secrets
// masked.
func (c *Config) MarshalEffective() ([]byte, error) {
	clone := *c
	if clone.Transcription.HFToken != "" {
		clone.Transcription.HFToken = "********"
	}
	clone.Filter.ExtraWords = append([]string(nil), c.Filter.ExtraWords...)
	clone.Filter.AllowWords = append([]string(nil), c.Filter.AllowWords...)
	data, err := toml.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
