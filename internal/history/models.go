package history

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusClean     Status = "clean"
	StatusPreview   Status = "preview"
	StatusCancelled Status = "cancelled"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Mode is the operation a run performed.
type Mode string

const (
	ModeClean       Mode = "clean"
	ModeDetect      Mode = "detect"
	ModeEDLGenerate Mode = "edl-generate"
	ModeEDLApply    Mode = "edl-apply"
)

// Run is one processed input.
type Run struct {
	ID                string
	InputFile         string
	OutputFile        string
	Mode              Mode
	Status            Status
	StartedAt         time.Time
	FinishedAt        time.Time
	WordCount         int
	MatchCount        int
	UndetectableCount int
	MutedSeconds      float64
	AlignmentNote     string
	ErrorMessage      string
}

// Duration returns the wall-clock time of the run.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Match is a profane word recorded for a run.
type Match struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
	Timed      bool    `json:"timed"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}
