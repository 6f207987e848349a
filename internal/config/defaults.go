package config

const (
	defaultConfigPath    = "~/.config/musicclean/config.toml"
	projectConfigName    = "musicclean.toml"
	defaultWorkDir       = "~/.local/share/musicclean/work"
	defaultLogDir        = "~/.local/share/musicclean/logs"
	defaultHistoryDB     = "~/.local/share/musicclean/history.db"
	defaultPadMS         = 50
	defaultMinMatchRatio = 0.25
	defaultMaxCells      = 4_000_000
	defaultPython        = "python3"
	defaultDemucsModel   = "htdemucs"
	defaultWhisperModel  = "large-v3"
	defaultLanguage      = "en"
	defaultVADMethod     = "silero"
	defaultSuffix        = " (clean)"
	defaultBitrate       = "320k"
	defaultNtfyTimeout   = 10
	defaultNotifyMin     = 1
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"

	// ProfanityListEnv overrides filter.profanity_list when the file leaves it blank.
	ProfanityListEnv = "MUSICCLEAN_PROFANITY_LIST"
	// NtfyTopicEnv overrides notifications.ntfy_topic when the file leaves it blank.
	NtfyTopicEnv = "MUSICCLEAN_NTFY_TOPIC"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Filter: Filter{
			PadMS: defaultPadMS,
		},
		Alignment: Alignment{
			Enabled:       true,
			MinMatchRatio: defaultMinMatchRatio,
			MaxCells:      defaultMaxCells,
			Phonetic:      true,
		},
		Separation: Separation{
			Python: defaultPython,
			Model:  defaultDemucsModel,
		},
		Transcription: Transcription{
			Model:        defaultWhisperModel,
			Language:     defaultLanguage,
			VADMethod:    defaultVADMethod,
			LyricsPrompt: true,
		},
		Output: Output{
			Suffix:      defaultSuffix,
			Bitrate:     defaultBitrate,
			WriteLRC:    true,
			EmbedLyrics: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			MinFiles:       defaultNotifyMin,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
