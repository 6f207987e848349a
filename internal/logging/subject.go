package logging

import (
	"path/filepath"
	"strings"
)

// FormatSubject builds the file/run/stage subject string used in console output.
func FormatSubject(inputFile, runID, stage string) string {
	inputFile = strings.TrimSpace(inputFile)
	runID = strings.TrimSpace(runID)
	stage = strings.TrimSpace(stage)
	parts := make([]string, 0, 2)
	if inputFile != "" {
		parts = append(parts, filepath.Base(inputFile))
	}
	if len(runID) > 8 {
		runID = runID[:8]
	}
	switch {
	case runID != "" && stage != "":
		parts = append(parts, "run "+runID+" ("+stage+")")
	case runID != "":
		parts = append(parts, "run "+runID)
	case stage != "":
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
