// Package alert rate-limits repeated alerts. The gate is an in-memory,
// per-key cooldown state machine; its records are a non-authoritative
// rate-limiting aid and are safe to lose on restart.
package alert

import (
	"fmt"
	"sync"
	"time"
)

// Alert type names shared with the presentation boundary.
const (
	TypeBudget   = "budget_alert"
	TypeAnomaly  = "anomaly_alert"
	TypeVelocity = "velocity_alert"
	TypeDaily    = "daily_summary"
	TypeWeekend  = "weekend_alert"
	TypeWeekly   = "weekly_review"
	TypeInsights = "monthly_insights"
)

// Cooldowns holds the minimum interval between repeated alerts per kind.
type Cooldowns struct {
	Budget   time.Duration
	Anomaly  time.Duration
	Velocity time.Duration // effectively hour-keyed in the legacy system
	Daily    time.Duration
}

// DefaultCooldowns returns the stock alert spacing.
func DefaultCooldowns() Cooldowns {
	return Cooldowns{
		Budget:   6 * time.Hour,
		Anomaly:  6 * time.Hour,
		Velocity: 24 * time.Hour,
		Daily:    24 * time.Hour,
	}
}

// Key identifies one cooldown slot.
type Key struct {
	UserID    string
	Category  string
	AlertType string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.UserID, k.Category, k.AlertType)
}

// Gate tracks, per key, when an alert was last emitted. Concurrent
// evaluations for the same user are expected to be serialized by the caller;
// the internal lock additionally keeps the read-then-write atomic so the gate
// stays correct even without that serialization.
type Gate struct {
	mu      sync.Mutex
	emitted map[Key]time.Time
}

func NewGate() *Gate {
	return &Gate{emitted: make(map[Key]time.Time)}
}

// CheckAndRecord reports whether an alert for key may be emitted at now.
// If allowed, now is recorded as the emission time. If denied, the stored
// record is left untouched so the cooldown window is anchored to the first
// emission.
func (g *Gate) CheckAndRecord(key Key, now time.Time, cooldown time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.emitted[key]
	if ok && now.Sub(last) < cooldown {
		return false
	}
	g.emitted[key] = now
	return true
}

// CheckAndRecordDay allows at most one alert for key per calendar day in the
// given location, regardless of the hour it fired.
func (g *Gate) CheckAndRecordDay(key Key, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.emitted[key]
	if ok && sameDay(last, now) {
		return false
	}
	g.emitted[key] = now
	return true
}

// Prune drops records older than maxAge. The gate grows with distinct keys,
// so long-running workers call this periodically.
func (g *Gate) Prune(now time.Time, maxAge time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for key, at := range g.emitted {
		if now.Sub(at) > maxAge {
			delete(g.emitted, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live cooldown records.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.emitted)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
