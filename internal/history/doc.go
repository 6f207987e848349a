// Package history persists a record of every processing run in SQLite so
// past detections can be reviewed with `musicclean history`.
//
// Each run row captures the input, the mode (clean, detect, edl), the
// outcome, and summary counts; the matches table keeps every profane word
// that was found, with timing and context. Writes retry on SQLITE_BUSY so
// concurrent batch workers can share one database file.
package history
