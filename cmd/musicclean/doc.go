// Package main hosts the musicclean CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the logger and
// history store, and hands each input file to the pipeline coordinator.
// Batches run through a bounded errgroup; per-file failures are reported in
// a summary table and turn into a non-zero exit once every file finished.
//
// Keep this package thin: behavior belongs in the internal packages, and
// commands here only parse flags and render results.
package main
