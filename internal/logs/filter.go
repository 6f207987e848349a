package logs

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Filter selects log records. Zero fields match everything.
type Filter struct {
	// RunID matches a full run ID or any prefix of one.
	RunID string
	// MinLevel drops records below this level (debug, info, warn, error).
	MinLevel string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "warning": 2, "error": 3}

var consoleRunPattern = regexp.MustCompile(`(?:^| )run ([0-9A-Za-z-]{4,})\b`)

// Empty reports whether the filter passes every line.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.RunID) == "" && strings.TrimSpace(f.MinLevel) == ""
}

// Keep returns a line predicate for a single pass over the log. Console
// records span several lines; indented field lines follow the decision made
// for their header.
func (f Filter) Keep() func(string) bool {
	if f.Empty() {
		return nil
	}
	lastHeader := false
	return func(line string) bool {
		if strings.TrimSpace(line) == "" {
			return false
		}
		if isContinuation(line) {
			return lastHeader
		}
		lastHeader = f.match(line)
		return lastHeader
	}
}

func isContinuation(line string) bool {
	return strings.HasPrefix(line, "    - ") || strings.HasPrefix(line, "    + ")
}

func (f Filter) match(line string) bool {
	level, runID, ok := parseJSONLine(line)
	if !ok {
		level, runID = parseConsoleLine(line)
	}
	if minimum := strings.ToLower(strings.TrimSpace(f.MinLevel)); minimum != "" && level != "" {
		if levelRank[level] < levelRank[minimum] {
			return false
		}
	}
	if want := strings.ToLower(strings.TrimSpace(f.RunID)); want != "" {
		if runID == "" {
			return false
		}
		// Console headers carry the first eight characters only.
		if !strings.HasPrefix(runID, want) && !strings.HasPrefix(want, runID) {
			return false
		}
	}
	return true
}

func parseJSONLine(line string) (level, runID string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return "", "", false
	}
	var fields struct {
		Level string `json:"level"`
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return "", "", false
	}
	return strings.ToLower(fields.Level), strings.ToLower(fields.RunID), true
}

// parseConsoleLine reads headers shaped like
// "2026-01-02 15:04:05 INFO [component] Song.mp3 · run 0123abcd (stage) – message".
func parseConsoleLine(line string) (level, runID string) {
	header, _, _ := strings.Cut(line, " – ")
	fields := strings.Fields(header)
	for i := 0; i < len(fields) && i < 3; i++ {
		if _, known := levelRank[strings.ToLower(fields[i])]; known {
			level = strings.ToLower(fields[i])
			break
		}
	}
	if m := consoleRunPattern.FindStringSubmatch(header); m != nil {
		runID = strings.ToLower(m[1])
	}
	return level, runID
}
