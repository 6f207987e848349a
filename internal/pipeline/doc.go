// Package pipeline sequences one track through separation, transcription,
// optional lyric alignment, profanity matching, interval building, and
// muting.
//
// Analyze is the pure core: it turns hypothesis words, optional lyric text,
// and a profanity set into matches and mute intervals without touching
// audio. Coordinator wraps it with the external collaborators (Demucs,
// WhisperX, ffmpeg, the history store) behind small interfaces, a per-input
// file lock, and scratch-directory lifecycle. Every stage finishes before the
// next begins.
package pipeline
