package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"musicclean/internal/history"
	"musicclean/internal/logging"
	"musicclean/internal/mute"
	"musicclean/internal/pipeline"
	"musicclean/internal/services"
)

type batchOutcome struct {
	Input  string
	Result *pipeline.Result
	Err    error
}

// runBatch processes inputs with at most jobs in flight. A failed file never
// stops the others; outcomes keep the input order.
func runBatch(ctx context.Context, logger *slog.Logger, inputs []string, jobs int, fn func(context.Context, string) (*pipeline.Result, error)) []batchOutcome {
	if jobs < 1 {
		jobs = 1
	}
	outcomes := make([]batchOutcome, len(inputs))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = batchOutcome{Input: input, Err: services.Wrap(services.ErrCancelled, "batch", "schedule", "not started", err)}
				return nil
			}
			result, err := fn(ctx, input)
			if err != nil {
				logging.ErrorWithContext(logger, "file failed", "file_failed",
					logging.String(logging.FieldInputFile, input),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, services.Hint(err)),
				)
			}
			outcomes[i] = batchOutcome{Input: input, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func outcomeStatus(o batchOutcome) history.Status {
	if o.Result != nil && o.Result.Status != "" {
		return o.Result.Status
	}
	if o.Err != nil {
		return services.FailureStatus(o.Err)
	}
	return history.StatusFailed
}

func renderBatchSummary(outcomes []batchOutcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		matches, muted, detail := "-", "-", ""
		if r := o.Result; r != nil {
			if r.Analysis != nil {
				matches = strconv.Itoa(len(r.Analysis.Detection.Matches))
			}
			if len(r.Intervals) > 0 {
				muted = fmt.Sprintf("%.2fs", mute.Total(r.Intervals))
			}
			switch {
			case r.Output != "":
				detail = r.Output
			case r.EDLPath != "":
				detail = r.EDLPath
			}
		}
		if o.Err != nil {
			detail = o.Err.Error()
		}
		rows = append(rows, []string{
			filepath.Base(o.Input),
			string(outcomeStatus(o)),
			matches,
			muted,
			detail,
		})
	}
	return renderTable(
		[]string{"File", "Status", "Matches", "Muted", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

// batchError summarizes failures. Interrupted batches return the context
// error so main exits quietly.
func batchError(ctx context.Context, outcomes []batchOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	if len(outcomes) == 1 {
		return outcomes[0].Err
	}
	return fmt.Errorf("%d of %d files failed", failed, len(outcomes))
}

// checkOutputCollisions rejects a batch in which two inputs would be written
// to the same output file, such as same-named songs from different folders
// sent to one --output-dir.
func checkOutputCollisions(coordinator *pipeline.Coordinator, inputs []string, outputDir string) error {
	owners := make(map[string]string, len(inputs))
	for _, input := range inputs {
		target := coordinator.OutputPath(pipeline.Request{Input: input, OutputDir: outputDir})
		if abs, err := filepath.Abs(target); err == nil {
			target = abs
		}
		if previous, ok := owners[target]; ok {
			return fmt.Errorf("%s and %s would both be written to %s", previous, input, target)
		}
		owners[target] = input
	}
	return nil
}
