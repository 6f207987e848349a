// Package notifications sends ntfy push messages when a batch of songs
// finishes or fails.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers notify unconditionally. Delivery failures are returned to the
// caller, which logs them; a notification never changes a run's outcome.
package notifications
