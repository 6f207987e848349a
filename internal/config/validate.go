package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"musicclean/internal/language"
	"musicclean/internal/services/ffmpeg"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateSeparation(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		return errors.New("paths.history_db must be set")
	}
	return nil
}

func (c *Config) validateFilter() error {
	if c.Filter.PadMS < 0 {
		return errors.New("filter.pad_ms must be >= 0")
	}
	if c.Filter.PadMS > 2000 {
		return errors.New("filter.pad_ms must be <= 2000")
	}
	if c.Filter.ProfanityList != "" {
		info, err := os.Stat(c.Filter.ProfanityList)
		if err != nil {
			return fmt.Errorf("filter.profanity_list: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("filter.profanity_list %q is a directory", c.Filter.ProfanityList)
		}
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.MinMatchRatio < 0 || c.Alignment.MinMatchRatio > 1 {
		return errors.New("alignment.min_match_ratio must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateSeparation() error {
	switch c.Separation.Device {
	case "", "cpu", "cuda", "mps":
		return nil
	default:
		return fmt.Errorf("separation.device must be cpu, cuda, or mps (got %q)", c.Separation.Device)
	}
}

func (c *Config) validateTranscription() error {
	if !language.Valid(c.Transcription.Language) {
		return fmt.Errorf("transcription.language %q is not recognized", c.Transcription.Language)
	}
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote (got %q)", c.Transcription.VADMethod)
	}
	if c.Transcription.VADMethod == "pyannote" && c.Transcription.HFToken == "" {
		return errors.New("transcription.hf_token must be set when transcription.vad_method is pyannote (or set HF_TOKEN)")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Format != "" && !ffmpeg.Supported(c.Output.Format) {
		return fmt.Errorf("output.format %q is not supported (use one of %s)", c.Output.Format, strings.Join(ffmpeg.Formats(), ", "))
	}
	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		return errors.New("output.suffix must not contain path separators")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic %q must be an http(s) URL", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}
