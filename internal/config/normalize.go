package config

import (
	"fmt"
	"os"
	"strings"

	"musicclean/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeFilter(); err != nil {
		return err
	}
	c.normalizeAlignment()
	c.normalizeSeparation()
	c.normalizeTranscription()
	c.normalizeOutput()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeFilter() error {
	c.Filter.ProfanityList = strings.TrimSpace(c.Filter.ProfanityList)
	if c.Filter.ProfanityList == "" {
		if value, ok := os.LookupEnv(ProfanityListEnv); ok {
			c.Filter.ProfanityList = strings.TrimSpace(value)
		}
	}
	if c.Filter.ProfanityList != "" {
		expanded, err := expandPath(c.Filter.ProfanityList)
		if err != nil {
			return fmt.Errorf("filter.profanity_list: %w", err)
		}
		c.Filter.ProfanityList = expanded
	}
	c.Filter.ExtraWords = normalizeWordList(c.Filter.ExtraWords)
	c.Filter.AllowWords = normalizeWordList(c.Filter.AllowWords)
	return nil
}

func normalizeWordList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func (c *Config) normalizeAlignment() {
	if c.Alignment.MaxCells <= 0 {
		c.Alignment.MaxCells = defaultMaxCells
	}
}

func (c *Config) normalizeSeparation() {
	c.Separation.Python = strings.TrimSpace(c.Separation.Python)
	if c.Separation.Python == "" {
		c.Separation.Python = defaultPython
	}
	c.Separation.Model = strings.TrimSpace(c.Separation.Model)
	if c.Separation.Model == "" {
		c.Separation.Model = defaultDemucsModel
	}
	c.Separation.Device = strings.ToLower(strings.TrimSpace(c.Separation.Device))
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.Language == "" {
		c.Transcription.Language = defaultLanguage
	}
	if c.Transcription.Language != language.Auto {
		if code := language.ToISO2(c.Transcription.Language); code != "" {
			c.Transcription.Language = code
		}
	}
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultVADMethod
	}
	c.Transcription.HFToken = strings.TrimSpace(c.Transcription.HFToken)
	if c.Transcription.HFToken == "" {
		for _, key := range []string{"HUGGING_FACE_HUB_TOKEN", "HF_TOKEN"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.Transcription.HFToken = strings.TrimSpace(value)
				break
			}
		}
	}
}

func (c *Config) normalizeOutput() {
	if c.Output.Suffix == "" {
		c.Output.Suffix = defaultSuffix
	}
	c.Output.Format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Output.Format)), ".")
	c.Output.Bitrate = strings.TrimSpace(c.Output.Bitrate)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = strings.TrimSpace(os.Getenv(NtfyTopicEnv))
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	if c.Notifications.MinFiles <= 0 {
		c.Notifications.MinFiles = defaultNotifyMin
	}
}
