// Package demucs separates a mixed track into vocal and instrumental stems
// by running Demucs in two-stem mode.
package demucs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"musicclean/internal/services"
)

const (
	DefaultPython = "python3"
	DefaultModel  = "htdemucs"

	VocalsFile       = "vocals.wav"
	InstrumentalFile = "no_vocals.wav"
)

// Config captures runtime settings for Demucs.
type Config struct {
	// Python is the interpreter with demucs installed.
	Python string
	// Model is the pretrained model name (htdemucs, htdemucs_ft, mdx_extra).
	Model string
	// Device forces "cpu" or "cuda"; blank lets Demucs choose.
	Device string
}

// Stems locates the separated outputs of one track.
type Stems struct {
	Dir          string
	Vocals       string
	Instrumental string
}

// ErrStemsMissing reports that Demucs finished without producing both stems.
var ErrStemsMissing = errors.New("expected stem files not found")

// Service runs Demucs.
type Service struct {
	cfg           Config
	commandRunner services.CommandRunner
}

// NewService creates a Demucs service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Python) == "" {
		cfg.Python = DefaultPython
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg, commandRunner: services.ExecRunner()}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner services.CommandRunner) {
	s.commandRunner = runner
}

// Model returns the configured model name.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Separate splits input into stems under outputDir. Demucs writes them to
// <outputDir>/<model>/<input stem>/.
func (s *Service) Separate(ctx context.Context, input, outputDir string) (Stems, error) {
	if input == "" {
		return Stems{}, fmt.Errorf("separate: input path required")
	}
	if _, err := os.Stat(input); err != nil {
		return Stems{}, fmt.Errorf("separate: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Stems{}, fmt.Errorf("separate: ensure output dir: %w", err)
	}

	if err := s.commandRunner(ctx, s.cfg.Python, s.buildArgs(input, outputDir)...); err != nil {
		return Stems{}, fmt.Errorf("demucs: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return Locate(filepath.Join(outputDir, s.cfg.Model, base))
}

func (s *Service) buildArgs(input, outputDir string) []string {
	args := []string{
		"-m", "demucs",
		"--two-stems", "vocals",
		"-n", s.cfg.Model,
		"-o", outputDir,
	}
	if device := strings.TrimSpace(s.cfg.Device); device != "" {
		args = append(args, "-d", device)
	}
	return append(args, input)
}

// Locate returns the stems in dir, failing when either file is absent.
func Locate(dir string) (Stems, error) {
	stems := Stems{
		Dir:          dir,
		Vocals:       filepath.Join(dir, VocalsFile),
		Instrumental: filepath.Join(dir, InstrumentalFile),
	}
	for _, path := range []string{stems.Vocals, stems.Instrumental} {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return Stems{}, fmt.Errorf("%w in %s", ErrStemsMissing, dir)
		}
	}
	return stems, nil
}
