package threshold

import (
	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// Result is the outcome of one evaluation pass.
type Result struct {
	// Statuses classifies every configured tag.
	Statuses map[behavior.Tag]behavior.Status
	// Progress is accumulated/threshold per tag, clamped to [0, 1].
	Progress map[behavior.Tag]float64
	// Primary is the most overdue crossed tag, empty when none crossed.
	Primary behavior.Tag
	// CrossedCount is the number of tags at or above their threshold.
	CrossedCount int
}

// Crossed reports whether at least one tag is at or above its threshold.
func (r *Result) Crossed() bool {
	return r.CrossedCount > 0
}

// Evaluator compares accumulated values against the configured thresholds.
type Evaluator struct {
	// order preserves the configuration table order for tie-breaking.
	order []behavior.Tag
	// limits holds the thresholds in the active policy's units.
	limits map[behavior.Tag]float64
}

// New builds an evaluator from the configured threshold table.
func New(cfg *config.Config) *Evaluator {
	tags := cfg.Tags()

	e := &Evaluator{
		order:  tags,
		limits: make(map[behavior.Tag]float64, len(tags)),
	}

	for _, tag := range tags {
		limit, _ := cfg.Limit(tag)
		e.limits[tag] = limit
	}

	return e
}

// Evaluate classifies each configured tag against its threshold. Equality
// counts as crossed. The primary tag is the one whose overshoot
// (accumulated minus threshold) is largest; ties keep the earlier table
// entry.
func (e *Evaluator) Evaluate(accumulated map[behavior.Tag]float64) *Result {
	result := &Result{
		Statuses: make(map[behavior.Tag]behavior.Status, len(e.order)),
		Progress: make(map[behavior.Tag]float64, len(e.order)),
	}

	var (
		bestOverdue float64
		havePrimary bool
	)

	for _, tag := range e.order {
		value := accumulated[tag]
		limit := e.limits[tag]
		result.Progress[tag] = progress(value, limit)

		if value < limit {
			result.Statuses[tag] = behavior.StatusBelow

			continue
		}

		result.Statuses[tag] = behavior.StatusCrossed
		result.CrossedCount++

		overdue := value - limit
		if !havePrimary || overdue > bestOverdue {
			havePrimary = true
			bestOverdue = overdue
			result.Primary = tag
		}
	}

	return result
}

// Limit returns the configured threshold for tag, false when unknown.
func (e *Evaluator) Limit(tag behavior.Tag) (float64, bool) {
	limit, ok := e.limits[tag]

	return limit, ok
}

// progress clamps accumulated/limit to [0, 1]. A non-positive limit means
// the tag is crossed as soon as it is tracked, so progress reads full.
func progress(value, limit float64) float64 {
	if limit <= 0 {
		return 1
	}

	ratio := value / limit
	if ratio > 1 {
		return 1
	}

	if ratio < 0 {
		return 0
	}

	return ratio
}
