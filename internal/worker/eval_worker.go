// Package worker wires the AMQP boundary to the evaluator: each consumed
// transaction-recorded message is classified if needed, appended to the
// ledger, evaluated, and the resulting alerts and digests are published.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"duit/internal/amqp"
	"duit/internal/cache"
	"duit/internal/classify"
	"duit/internal/core"
	"duit/internal/evaluator"
	"duit/internal/ledger"
)

// Publisher is the outbound AMQP surface the worker needs.
type Publisher interface {
	PublishAlert(ctx context.Context, msg *amqp.AlertMessage) error
	PublishReport(ctx context.Context, msg *amqp.ReportMessage) error
}

// UserLister enumerates users with recorded transactions for the digest
// scheduler.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

type EvalWorker struct {
	appender   ledger.Appender
	cached     *cache.LedgerReader
	classifier classify.Classifier
	evaluator  *evaluator.Evaluator
	publisher  Publisher
	users      UserLister
	loc        *time.Location
}

func NewEvalWorker(
	appender ledger.Appender,
	cached *cache.LedgerReader,
	classifier classify.Classifier,
	eval *evaluator.Evaluator,
	publisher Publisher,
	users UserLister,
	loc *time.Location,
) *EvalWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &EvalWorker{
		appender:   appender,
		cached:     cached,
		classifier: classifier,
		evaluator:  eval,
		publisher:  publisher,
		users:      users,
		loc:        loc,
	}
}

// HandleTransactionMessage processes one consumed message end to end.
// Returning an error requeues the delivery, so persistent failures should be
// logged and swallowed by the caller's policy, not here.
func (w *EvalWorker) HandleTransactionMessage(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	tx := core.Transaction{
		UserID:      msg.UserID,
		Amount:      core.Money{Cents: msg.AmountCents},
		Category:    msg.Category,
		Description: msg.Description,
		Timestamp:   msg.Timestamp,
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}
	tx.Timestamp = tx.Timestamp.In(w.loc)

	if tx.Category == "" {
		category, err := w.classifier.Classify(ctx, tx.Description)
		if err != nil {
			// Redelivery replays the same payload, so this can never
			// succeed on retry. Drop it like malformed JSON.
			slog.WarnContext(ctx, "Dropping unclassifiable transaction message",
				"user_id", tx.UserID,
				"error", err)
			return nil
		}
		tx.Category = category
	}

	// A payload that fails domain validation fails it on every redelivery;
	// requeueing would loop the same poison message forever.
	if err := tx.Validate(); err != nil {
		slog.WarnContext(ctx, "Dropping invalid transaction message",
			"user_id", tx.UserID,
			"category", tx.Category,
			"error", err)
		return nil
	}

	if _, err := w.appender.Append(ctx, tx); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	if w.cached != nil {
		w.cached.Invalidate(tx.UserID)
	}

	result, err := w.evaluator.EvaluateTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("evaluate transaction: %w", err)
	}

	for _, a := range result.Alerts {
		alertMsg := &amqp.AlertMessage{
			UserID:    result.UserID,
			AlertType: a.Type,
			Category:  a.Category,
			Severity:  a.Severity,
			Message:   a.Message,
			RaisedAt:  tx.Timestamp,
		}
		if err := w.publisher.PublishAlert(ctx, alertMsg); err != nil {
			// The evaluation itself succeeded; a lost alert is not worth a
			// requeue loop that would re-run it.
			slog.ErrorContext(ctx, "Failed to publish alert",
				"user_id", result.UserID,
				"alert_type", a.Type,
				"error", err)
		}
	}
	return nil
}

// RunDigests emits the scheduled reports for every known user: the daily
// summary every run, the weekly review on Sundays and the monthly insights
// on the first day of the month. The per-kind gates inside the evaluator
// keep repeated runs within a day idempotent.
func (w *EvalWorker) RunDigests(ctx context.Context, now time.Time) error {
	now = now.In(w.loc)
	userIDs, err := w.users.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, userID := range userIDs {
		w.publishDigest(ctx, userID, now, w.evaluator.DailySummary)
		if now.Weekday() == time.Sunday {
			w.publishDigest(ctx, userID, now, w.evaluator.WeeklyReview)
		}
		if now.Day() == 1 {
			w.publishDigest(ctx, userID, now, w.evaluator.MonthlyInsights)
		}
	}
	return nil
}

func (w *EvalWorker) publishDigest(
	ctx context.Context,
	userID string,
	now time.Time,
	compose func(context.Context, string, time.Time) (evaluator.Digest, bool, error),
) {
	digest, ok, err := compose(ctx, userID, now)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to compose digest", "user_id", userID, "error", err)
		return
	}
	if !ok {
		return
	}
	msg := &amqp.ReportMessage{
		UserID:      digest.UserID,
		Kind:        digest.Kind,
		Body:        digest.Body,
		GeneratedAt: now,
	}
	if err := w.publisher.PublishReport(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish report",
			"user_id", userID,
			"kind", digest.Kind,
			"error", err)
	}
}
