package config

import (
	"musicclean/internal/align"
	"musicclean/internal/profanity"
)

// ProfanitySet builds the effective word set: the configured list (or the
// built-in one), plus extra_words, minus allow_words.
func (c *Config) ProfanitySet() (*profanity.Set, error) {
	var (
		set *profanity.Set
		err error
	)
	if c.Filter.ProfanityList != "" {
		set, err = profanity.LoadFile(c.Filter.ProfanityList)
		if err != nil {
			return nil, err
		}
	} else {
		set = profanity.Default()
	}
	set.Add(c.Filter.ExtraWords...)
	set.Remove(c.Filter.AllowWords...)
	return set, nil
}

// AlignOptions converts the alignment section into aligner options.
func (c *Config) AlignOptions() align.Options {
	opts := align.DefaultOptions()
	opts.MinMatchRatio = c.Alignment.MinMatchRatio
	opts.MaxCells = c.Alignment.MaxCells
	opts.Phonetic = c.Alignment.Phonetic
	return opts
}
