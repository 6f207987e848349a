// Package whisperx runs WhisperX over an isolated vocal stem and returns
// word-level timings as hypothesis tokens.
//
// The service shells out to `uvx whisperx`, reads the JSON output, and
// fills in timing for words WhisperX could not align (numerals, symbols)
// from their neighbours. Configuration options (model, CUDA, VAD method,
// language) are passed via Config.
package whisperx
