// Package classify assigns an expense category to a free-text description.
// Two variants exist behind one interface: a rule-based keyword matcher and a
// delegating classifier that asks an external service and falls back to the
// rules. The variant is chosen by configuration, never by probing at runtime.
package classify

import (
	"context"
	"log/slog"
	"strings"
)

// CategoryOther is the catch-all category for unmatched descriptions.
const CategoryOther = "Other"

// Categories is the closed set of expense categories.
var Categories = []string{
	"Daily Needs",
	"Transportation",
	"Utilities",
	"Health",
	"Urgent",
	"Entertainment",
	"Education",
	"Shopping",
	"Bills",
	CategoryOther,
}

// Classifier maps an expense description to a category.
type Classifier interface {
	Classify(ctx context.Context, description string) (string, error)
}

// Keyword is the rule-based classifier: first category whose keyword list
// contains a substring of the lowercased description wins, in a fixed
// category order.
type Keyword struct{}

// keyword table, matched as substrings of the lowercased description.
var keywords = []struct {
	category string
	words    []string
}{
	{"Daily Needs", []string{"makan", "minum", "beras", "sayur", "buah", "daging", "ikan", "telur", "susu", "roti", "nasi", "lauk", "snack", "cemilan", "grocery", "belanja", "pasar", "supermarket"}},
	{"Transportation", []string{"bensin", "ojek", "grab", "gojek", "taxi", "bus", "kereta", "parkir", "tol", "transport"}},
	{"Utilities", []string{"listrik", "air", "internet", "wifi", "pulsa", "token", "pln", "pdam", "indihome"}},
	{"Health", []string{"obat", "dokter", "rumah sakit", "rs", "klinik", "vitamin", "medical", "kesehatan"}},
	{"Urgent", []string{"darurat", "urgent", "penting", "mendadak", "emergency"}},
	{"Entertainment", []string{"nonton", "bioskop", "game", "musik", "streaming", "netflix", "spotify", "hiburan", "jalan", "mall", "cafe", "restaurant", "film", "nongkrong"}},
}

func NewKeyword() *Keyword {
	return &Keyword{}
}

func (k *Keyword) Classify(_ context.Context, description string) (string, error) {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return CategoryOther, nil
	}
	for _, entry := range keywords {
		for _, word := range entry.words {
			if strings.Contains(desc, word) {
				return entry.category, nil
			}
		}
	}
	return CategoryOther, nil
}

// Remote is the boundary to an externally hosted classifier.
type Remote interface {
	ClassifyExpense(ctx context.Context, description string, categories []string) (string, error)
}

// Delegating asks a Remote classifier and falls back to the keyword rules on
// error or when the remote answer is not a known category.
type Delegating struct {
	remote   Remote
	fallback *Keyword
}

func NewDelegating(remote Remote) *Delegating {
	return &Delegating{remote: remote, fallback: NewKeyword()}
}

func (d *Delegating) Classify(ctx context.Context, description string) (string, error) {
	category, err := d.remote.ClassifyExpense(ctx, description, Categories)
	if err != nil {
		slog.WarnContext(ctx, "Remote classification failed, using keyword rules",
			"error", err)
		return d.fallback.Classify(ctx, description)
	}
	if !validCategory(category) {
		slog.WarnContext(ctx, "Remote classifier returned unknown category, using keyword rules",
			"category", category)
		return d.fallback.Classify(ctx, description)
	}
	return category, nil
}

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
