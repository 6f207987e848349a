package logs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "musicclean.log")
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func appendLog(t *testing.T, path, text string) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer file.Close()
	if _, err := file.WriteString(text); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestLast(t *testing.T) {
	path := writeLog(t, "one", "two", "three", "four", "five")

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "fewer than file", limit: 2, want: []string{"four", "five"}},
		{name: "wraps ring", limit: 3, want: []string{"three", "four", "five"}},
		{name: "exact", limit: 5, want: []string{"one", "two", "three", "four", "five"}},
		{name: "more than file", limit: 10, want: []string{"one", "two", "three", "four", "five"}},
		{name: "zero", limit: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, offset, err := Last(path, tt.limit, nil)
			if err != nil {
				t.Fatalf("Last: %v", err)
			}
			if len(got) != len(tt.want) || (len(got) > 0 && !reflect.DeepEqual(got, tt.want)) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			info, _ := os.Stat(path)
			if offset != info.Size() {
				t.Fatalf("offset %d, want %d", offset, info.Size())
			}
		})
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := Last(filepath.Join(t.TempDir(), "absent.log"), 5, nil)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestLastAppliesPredicateBeforeLimit(t *testing.T) {
	path := writeLog(t, "keep 1", "drop", "keep 2", "drop", "drop")
	got, _, err := Last(path, 2, func(line string) bool { return strings.HasPrefix(line, "keep") })
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"keep 1", "keep 2"}) {
		t.Fatalf("got %v", got)
	}
}

func TestReadFromHoldsPartialLine(t *testing.T) {
	path := writeLog(t, "first")
	_, offset, err := Last(path, 1, nil)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	appendLog(t, path, "second\r\nthi")
	lines, next, err := ReadFrom(path, offset)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"second"}) {
		t.Fatalf("got %v", lines)
	}

	appendLog(t, path, "rd\n")
	lines, _, err = ReadFrom(path, next)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"third"}) {
		t.Fatalf("got %v", lines)
	}
}

func TestReadFromRestartsAfterTruncation(t *testing.T) {
	path := writeLog(t, "fresh")
	lines, _, err := ReadFrom(path, 9999)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"fresh"}) {
		t.Fatalf("got %v", lines)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "old")
	_, offset, err := Last(path, 0, nil)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, offset, 10*time.Millisecond, nil, func(line string) { got <- line })
	}()

	appendLog(t, path, "new\n")
	select {
	case line := <-got:
		if line != "new" {
			t.Fatalf("got %q", line)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for followed line")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
