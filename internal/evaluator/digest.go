package evaluator

import (
	"context"
	"fmt"
	"time"

	"duit/internal/alert"
	"duit/internal/analytics"
	"duit/internal/budget"
	"duit/internal/core"
	"duit/internal/profile"
)

// Digest is a scheduled report body ready for publishing. Kind matches the
// alert type constants for the report kinds.
type Digest struct {
	Kind   string
	UserID string
	Body   string
}

// DailySummary composes the end-of-day recap for one user: today's total,
// the per-category breakdown and any budget warnings. Emitted at most once
// per calendar day per user; returns ok=false when gated or when the day
// holds no transactions.
func (e *Evaluator) DailySummary(ctx context.Context, userID string, now time.Time) (Digest, bool, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now = now.In(e.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
	today, err := e.ledger.ListTransactions(ctx, userID, dayStart, now.Add(time.Second))
	if err != nil {
		return Digest{}, false, fmt.Errorf("daily summary: %w", err)
	}
	if len(today) == 0 {
		return Digest{}, false, nil
	}

	warnings, err := e.dailyBudgetWarnings(ctx, userID, today, now)
	if err != nil {
		return Digest{}, false, err
	}

	body, ok := e.composer.DailySummary(today, warnings)
	if !ok {
		return Digest{}, false, nil
	}
	key := alert.Key{UserID: userID, AlertType: alert.TypeDaily}
	if !e.gate.CheckAndRecordDay(key, now) {
		return Digest{}, false, nil
	}
	return Digest{Kind: alert.TypeDaily, UserID: userID, Body: body}, true, nil
}

// dailyBudgetWarnings evaluates month-to-date spend for each category seen
// today and collects the warning and exceeded messages.
func (e *Evaluator) dailyBudgetWarnings(ctx context.Context, userID string, today []core.Transaction, now time.Time) ([]string, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, e.loc)
	month, err := e.ledger.ListTransactions(ctx, userID, monthStart, now.Add(time.Second))
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}

	seen := map[string]bool{}
	var warnings []string
	for _, tx := range today {
		if seen[tx.Category] {
			continue
		}
		seen[tx.Category] = true
		spent := profile.SpentInWindow(month, tx.Category, monthStart, now.Add(time.Second))
		status, err := e.budgets.Status(ctx, userID, tx.Category, spent)
		if err != nil {
			return nil, fmt.Errorf("daily summary: %w", err)
		}
		if status.State == budget.StateWarning || status.State == budget.StateExceeded {
			warnings = append(warnings, status.Message)
		}
	}
	return warnings, nil
}

// WeeklyReview grades the trailing seven days of spending against each
// category budget's weekly share. Gated once per calendar day.
func (e *Evaluator) WeeklyReview(ctx context.Context, userID string, now time.Time) (Digest, bool, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now = now.In(e.loc)
	budgets, err := e.budgets.List(ctx, userID)
	if err != nil {
		return Digest{}, false, fmt.Errorf("weekly review: %w", err)
	}

	weekStart := now.Add(-7 * 24 * time.Hour)
	week, err := e.ledger.ListTransactions(ctx, userID, weekStart, now.Add(time.Second))
	if err != nil {
		return Digest{}, false, fmt.Errorf("weekly review: %w", err)
	}
	spent := map[string]core.Money{}
	for _, tx := range week {
		m := spent[tx.Category]
		m.Cents += tx.Amount.Cents
		spent[tx.Category] = m
	}

	review := analytics.WeeklyBudgetReview(budgets, spent)
	body := e.composer.WeeklyReviewText(review)
	if !review.HasBudgets {
		// Nothing to review yet; include default amounts as a starting point.
		body += "\n\n" + e.composer.BudgetSuggestionsText(budget.Suggestions(core.Money{}))
	}

	key := alert.Key{UserID: userID, AlertType: alert.TypeWeekly}
	if !e.gate.CheckAndRecordDay(key, now) {
		return Digest{}, false, nil
	}
	return Digest{Kind: alert.TypeWeekly, UserID: userID, Body: body}, true, nil
}

// MonthlyInsights composes the full monthly analysis over a six-month
// window. Gated once per calendar day.
func (e *Evaluator) MonthlyInsights(ctx context.Context, userID string, now time.Time) (Digest, bool, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now = now.In(e.loc)
	since := now.Add(-6 * 30 * 24 * time.Hour)
	history, err := e.ledger.ListTransactions(ctx, userID, since, now.Add(time.Second))
	if err != nil {
		return Digest{}, false, fmt.Errorf("monthly insights: %w", err)
	}
	if len(history) == 0 {
		return Digest{}, false, nil
	}

	body := e.composer.MonthlyInsightsReport(history, now)

	key := alert.Key{UserID: userID, AlertType: alert.TypeInsights}
	if !e.gate.CheckAndRecordDay(key, now) {
		return Digest{}, false, nil
	}
	return Digest{Kind: alert.TypeInsights, UserID: userID, Body: body}, true, nil
}
