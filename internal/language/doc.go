// Package language normalizes the transcription language setting into the
// two-letter codes the recognizer accepts.
package language
