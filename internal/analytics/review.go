package analytics

import (
	"sort"

	"duit/internal/core"
)

type ReviewStatus string

const (
	ReviewOK       ReviewStatus = "ok"
	ReviewWarning  ReviewStatus = "warning"
	ReviewExceeded ReviewStatus = "exceeded"
)

type ReviewEntry struct {
	Category     string
	Spent        core.Money
	WeeklyTarget core.Money
	Percent      float64
	Status       ReviewStatus
}

type WeeklyReview struct {
	HasBudgets bool
	Entries    []ReviewEntry
	Warnings   []string
}

// WeeklyBudgetReview grades one week of spending against a quarter of each
// monthly budget. At or above the weekly target is exceeded, 75% and up is a
// warning. Categories without a budget are skipped.
func WeeklyBudgetReview(budgets []core.CategoryBudget, weeklySpent map[string]core.Money) WeeklyReview {
	review := WeeklyReview{HasBudgets: len(budgets) > 0}
	if !review.HasBudgets {
		return review
	}

	byCategory := make(map[string]core.CategoryBudget, len(budgets))
	for _, b := range budgets {
		byCategory[b.Category] = b
	}

	categories := make([]string, 0, len(weeklySpent))
	for cat := range weeklySpent {
		if _, ok := byCategory[cat]; ok {
			categories = append(categories, cat)
		}
	}
	sort.Strings(categories)

	for _, cat := range categories {
		spent := weeklySpent[cat]
		target := byCategory[cat].Amount.Cents / 4
		entry := ReviewEntry{
			Category:     cat,
			Spent:        spent,
			WeeklyTarget: core.Money{Cents: target},
			Status:       ReviewOK,
		}
		if target > 0 {
			entry.Percent = float64(spent.Cents) / float64(target) * 100
		}
		switch {
		case entry.Percent >= 100:
			entry.Status = ReviewExceeded
			review.Warnings = append(review.Warnings,
				"Budget "+cat+" sudah melebihi target mingguan")
		case entry.Percent >= 75:
			entry.Status = ReviewWarning
			review.Warnings = append(review.Warnings,
				"Budget "+cat+" hampir mencapai target mingguan")
		}
		review.Entries = append(review.Entries, entry)
	}
	return review
}
