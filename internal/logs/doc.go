// Package logs reads the musicclean log file for the `musicclean logs`
// command.
//
// Last returns the final lines with bounded memory, ReadFrom resumes at a
// byte offset, and Follow polls for appended lines until its context ends.
// Filter narrows lines to one run or a minimum level.
package logs
