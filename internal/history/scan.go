package history

import (
	"database/sql"
	"strings"
	"time"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const runColumns = "id, input_file, output_file, mode, status, started_at, finished_at, word_count, match_count, undetectable_count, muted_seconds, alignment_note, error_message"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		outputFile   sql.NullString
		mode         string
		status       string
		startedRaw   string
		finishedRaw  sql.NullString
		note         sql.NullString
		errorMessage sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.InputFile,
		&outputFile,
		&mode,
		&status,
		&startedRaw,
		&finishedRaw,
		&run.WordCount,
		&run.MatchCount,
		&run.UndetectableCount,
		&run.MutedSeconds,
		&note,
		&errorMessage,
	); err != nil {
		return nil, err
	}
	run.OutputFile = outputFile.String
	run.Mode = Mode(mode)
	run.Status = Status(status)
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw.String)
	run.AlignmentNote = note.String
	run.ErrorMessage = errorMessage.String
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
