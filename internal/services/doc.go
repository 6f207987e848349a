// Package services defines shared utilities consumed by the pipeline stages
// and the external tool integrations (stem separation, transcription,
// encoding).
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and input files for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into history outcomes (failed vs cancelled).
//   - The CommandRunner abstraction that makes external tool invocations
//     testable.
package services
