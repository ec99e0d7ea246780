// Package evaluator is the single entry point run after a transaction has
// been persisted. It composes the budget evaluation, the anomaly report and
// the smart alerts behind the cooldown gate into one result.
package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"duit/internal/alert"
	"duit/internal/analytics"
	"duit/internal/anomaly"
	"duit/internal/budget"
	"duit/internal/core"
	"duit/internal/ledger"
	applog "duit/internal/log"
	"duit/internal/profile"
)

// historyDays is the transaction window loaded for pattern analysis.
const historyDays = 90

// Velocity alert: this many transactions inside the window with at least
// this summed amount (Rp 500.000).
const (
	velocityWindow   = 2 * time.Hour
	velocityMinCount = 3
	velocityMinCents = 50_000_000
)

// Weekend alert: Saturday or Sunday spend of at least Rp 200.000 in one of
// the watched categories, at most once per calendar day.
const weekendMinCents = 20_000_000

var weekendCategories = map[string]bool{
	"Entertainment": true,
	"Daily Needs":   true,
}

// Alert is one gated notification ready for publishing.
type Alert struct {
	Type     string
	Category string
	Severity string
	Message  string
}

// Result is everything derived from one recorded transaction.
type Result struct {
	UserID    string
	Budget    budget.Status
	Anomalies anomaly.Report
	Alerts    []Alert
}

type Evaluator struct {
	ledger   ledger.Reader
	budgets  *budget.Store
	engine   *anomaly.Engine
	gate     *alert.Gate
	composer *analytics.Composer
	cool     alert.Cooldowns
	loc      *time.Location
	logger   *applog.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

type Options struct {
	Thresholds anomaly.Thresholds
	Cooldowns  alert.Cooldowns
	Location   *time.Location
}

func New(reader ledger.Reader, budgets *budget.Store, opts Options) *Evaluator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Cooldowns == (alert.Cooldowns{}) {
		opts.Cooldowns = alert.DefaultCooldowns()
	}
	if opts.Thresholds == (anomaly.Thresholds{}) {
		opts.Thresholds = anomaly.DefaultThresholds()
	}
	return &Evaluator{
		ledger:   reader,
		budgets:  budgets,
		engine:   anomaly.NewEngine(opts.Thresholds),
		gate:     alert.NewGate(),
		composer: analytics.NewComposer(),
		cool:     opts.Cooldowns,
		loc:      opts.Location,
		logger:   applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentEvaluator),
		users:    make(map[string]*sync.Mutex),
	}
}

// Gate exposes the cooldown gate for periodic pruning.
func (e *Evaluator) Gate() *alert.Gate { return e.gate }

// EvaluateTransaction runs the full post-persist evaluation for one new
// transaction. The transaction is expected to already be in the ledger.
// Evaluations for the same user are serialized; different users proceed
// independently.
func (e *Evaluator) EvaluateTransaction(ctx context.Context, tx core.Transaction) (Result, error) {
	if err := tx.Validate(); err != nil {
		return Result{}, fmt.Errorf("evaluate transaction: %w", err)
	}
	lock := e.userLock(tx.UserID)
	lock.Lock()
	defer lock.Unlock()

	now := tx.Timestamp.In(e.loc)
	history, err := e.ledger.ListTransactions(ctx, tx.UserID, now.Add(-historyDays*24*time.Hour), now.Add(time.Second))
	if err != nil {
		return Result{}, fmt.Errorf("evaluate transaction: %w", err)
	}
	// The new transaction is part of the ledger already; the anomaly
	// baseline describes behavior before it.
	baseline := excludeOne(history, tx)

	result := Result{UserID: tx.UserID}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, e.loc)
	spent := profile.SpentInWindow(history, tx.Category, monthStart, now.Add(time.Second))
	result.Budget, err = e.budgets.Status(ctx, tx.UserID, tx.Category, spent)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate transaction: %w", err)
	}
	if result.Budget.State == budget.StateWarning || result.Budget.State == budget.StateExceeded {
		key := alert.Key{UserID: tx.UserID, Category: tx.Category, AlertType: alert.TypeBudget}
		if e.gate.CheckAndRecord(key, now, e.cool.Budget) {
			result.Alerts = append(result.Alerts, Alert{
				Type:     alert.TypeBudget,
				Category: tx.Category,
				Severity: budgetSeverity(result.Budget.State),
				Message:  result.Budget.Message,
			})
		}
	}

	result.Anomalies = e.engine.ComprehensiveReport(baseline, tx, now)
	for _, finding := range result.Anomalies.Anomalies {
		key := alert.Key{UserID: tx.UserID, Category: string(finding.Type), AlertType: alert.TypeAnomaly}
		if e.gate.CheckAndRecord(key, now, e.cool.Anomaly) {
			result.Alerts = append(result.Alerts, Alert{
				Type:     alert.TypeAnomaly,
				Category: finding.Category,
				Severity: string(finding.Severity),
				Message:  finding.Message,
			})
		}
	}

	if a := e.velocityAlert(tx.UserID, history, now); a != nil {
		result.Alerts = append(result.Alerts, *a)
	}
	if a := e.weekendAlert(tx, now); a != nil {
		result.Alerts = append(result.Alerts, *a)
	}

	e.logger.InfoContext(ctx, "Transaction evaluated",
		applog.FieldUserID, tx.UserID,
		applog.FieldCategory, tx.Category,
		applog.FieldAmountCents, tx.Amount.Cents,
		applog.FieldStatus, string(result.Budget.State),
		"anomalies", len(result.Anomalies.Anomalies),
		"alerts", len(result.Alerts))
	return result, nil
}

// velocityAlert fires when the trailing window holds enough spend in enough
// transactions, history including the new one.
func (e *Evaluator) velocityAlert(userID string, history []core.Transaction, now time.Time) *Alert {
	windowStart := now.Add(-velocityWindow)
	var count int
	var total int64
	for _, tx := range history {
		if !tx.Timestamp.Before(windowStart) {
			count++
			total += tx.Amount.Cents
		}
	}
	if count < velocityMinCount || total < velocityMinCents {
		return nil
	}
	key := alert.Key{UserID: userID, AlertType: alert.TypeVelocity}
	if !e.gate.CheckAndRecord(key, now, e.cool.Velocity) {
		return nil
	}
	return &Alert{
		Type:     alert.TypeVelocity,
		Severity: "medium",
		Message: fmt.Sprintf("Anda telah melakukan %d transaksi dalam %d jam terakhir dengan total %s. Pastikan pengeluaran ini sesuai rencana!",
			count, int(velocityWindow.Hours()), core.Money{Cents: total}.Format()),
	}
}

// weekendAlert fires on Saturday or Sunday for large spends in the watched
// categories, at most once per calendar day.
func (e *Evaluator) weekendAlert(tx core.Transaction, now time.Time) *Alert {
	if wd := now.Weekday(); wd != time.Saturday && wd != time.Sunday {
		return nil
	}
	if !weekendCategories[tx.Category] || tx.Amount.Cents < weekendMinCents {
		return nil
	}
	key := alert.Key{UserID: tx.UserID, AlertType: alert.TypeWeekend}
	if !e.gate.CheckAndRecordDay(key, now) {
		return nil
	}
	return &Alert{
		Type:     alert.TypeWeekend,
		Category: tx.Category,
		Severity: "low",
		Message: fmt.Sprintf("Pengeluaran %s di akhir pekan: %s. Jangan lupa sisakan budget untuk minggu depan!",
			tx.Category, tx.Amount.Format()),
	}
}

func budgetSeverity(state budget.State) string {
	if state == budget.StateExceeded {
		return "high"
	}
	return "medium"
}

func (e *Evaluator) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.users[userID] = lock
	}
	return lock
}

// excludeOne removes one transaction equal to tx from the slice, newest
// first, leaving duplicates from genuinely repeated purchases intact.
func excludeOne(txs []core.Transaction, tx core.Transaction) []core.Transaction {
	for i := len(txs) - 1; i >= 0; i-- {
		t := txs[i]
		if t.UserID == tx.UserID && t.Amount == tx.Amount && t.Category == tx.Category &&
			t.Description == tx.Description && t.Timestamp.Equal(tx.Timestamp) {
			out := make([]core.Transaction, 0, len(txs)-1)
			out = append(out, txs[:i]...)
			out = append(out, txs[i+1:]...)
			return out
		}
	}
	return txs
}
