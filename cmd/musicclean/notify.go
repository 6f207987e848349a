package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"musicclean/internal/config"
	"musicclean/internal/history"
	"musicclean/internal/logging"
	"musicclean/internal/mute"
	"musicclean/internal/notifications"
)

// summarizeBatch tallies outcomes for the completion notification.
func summarizeBatch(command string, outcomes []batchOutcome, elapsed time.Duration) notifications.BatchSummary {
	summary := notifications.BatchSummary{
		Command:   command,
		Processed: len(outcomes),
		Elapsed:   elapsed,
	}
	for _, o := range outcomes {
		if o.Err != nil {
			summary.Failed++
			continue
		}
		if o.Result == nil {
			continue
		}
		switch o.Result.Status {
		case history.StatusClean:
			summary.Clean++
		case history.StatusCompleted:
			if o.Result.Output != "" {
				summary.Cleaned++
				summary.Muted += time.Duration(mute.Total(o.Result.Intervals) * float64(time.Second))
			}
		}
	}
	return summary
}

// notifyBatch sends the completion notification, or an error notification
// when every file failed. Delivery problems are logged and never change the
// exit status.
func notifyBatch(ctx context.Context, cmdCtx *commandContext, cfg *config.Config, logger *slog.Logger, command string, outcomes []batchOutcome, started time.Time) {
	if ctx.Err() != nil {
		return
	}
	service := cmdCtx.notifier(cfg)
	summary := summarizeBatch(command, outcomes, time.Since(started))
	var err error
	if summary.Processed > 0 && summary.Failed == summary.Processed {
		err = service.NotifyError(ctx, batchError(ctx, outcomes), command)
	} else {
		err = service.NotifyBatchCompleted(ctx, summary)
	}
	if err != nil {
		logging.WarnWithContext(logger, "batch notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no push notification for this batch"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications are disabled (set notifications.ntfy_topic)")
				return nil
			}
			if err := ctx.notifier(cfg).TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
