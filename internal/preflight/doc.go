// Package preflight provides readiness checks for the external tools and
// filesystem paths that musicclean depends on.
//
// The CLI runs RunAll before processing a batch so a missing ffmpeg or an
// unwritable work directory fails fast instead of after a long separation.
// "musicclean status" reuses the individual checks for display.
package preflight
