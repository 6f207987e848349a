// Package align reconciles a timed hypothesis word sequence from speech
// recognition with an untimed reference sequence from supplied lyrics.
//
// The alignment is an explicit dynamic-programming edit script over
// normalized words with match, substitute, insert, and delete operations.
// Substitutions are priced by string and phonetic similarity so a misheard
// word still pairs with its lyric counterpart, and the trace-back prefers
// the earliest exact matches so repeated choruses never pull earlier words
// out of order. Alignment never fails: degenerate or implausible input
// yields a Result flagged as a fallback and the caller keeps the raw
// hypothesis stream.
package align
