// Package words defines the word token model shared by the transcription,
// alignment, and profanity detection stages.
//
// A Token is immutable once built: constructors clamp malformed timing and
// derive the normalized form exactly once, and helpers such as WithTiming
// return new values. Normalize is the single text normalizer used on
// recognizer output, reference lyrics, and profanity list entries so that
// matching is consistent on every side.
package words
