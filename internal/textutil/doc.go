// Package textutil provides small string helpers for path segments and
// terminal output.
package textutil
