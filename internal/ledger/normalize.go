package ledger

import (
	"fmt"
	"time"
)

// timestamp layouts accepted from ledger backends, tried in order.
var layouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalizer converts every timestamp entering the core to one canonical
// zoned representation.
type Normalizer struct {
	loc *time.Location
}

func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Normalize re-expresses a zoned timestamp in the canonical location.
func (n *Normalizer) Normalize(ts time.Time) time.Time {
	return ts.In(n.loc)
}

// Parse reads a raw timestamp string. Naive values are interpreted in the
// canonical location; zoned values are converted to it. An unparsable value
// returns an error so the caller can exclude the row.
func (n *Normalizer) Parse(raw string) (time.Time, error) {
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, raw, n.loc); err == nil {
			return ts.In(n.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", raw)
}

// Location returns the canonical zone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}
