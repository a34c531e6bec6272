package summary

import (
	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
	"github.com/oshokin/driver-sentry/internal/threshold"
)

// Recorder aggregates total observed duration per tag for the whole
// session. Totals grow monotonically and are never reset, unlike the
// tracker's accumulators.
type Recorder struct {
	// order preserves configuration order for the report.
	order []behavior.Tag
	// totals is the per-tag observed duration in seconds.
	totals map[behavior.Tag]float64
	// finalized guards against double finalization.
	finalized bool
}

// New creates a recorder for the configured tag set.
func New(cfg *config.Config) *Recorder {
	tags := cfg.Tags()

	r := &Recorder{
		order:  tags,
		totals: make(map[behavior.Tag]float64, len(tags)),
	}

	for _, tag := range tags {
		r.totals[tag] = 0
	}

	return r
}

// Observe adds the frame's elapsed time to every tag active in it.
func (r *Recorder) Observe(o *behavior.Observation) {
	if r.finalized {
		return
	}

	for tag := range o.Regions {
		if _, known := r.totals[tag]; !known {
			continue
		}

		r.totals[tag] += o.Delta.Seconds()
	}
}

// Finalize emits the report rows in configuration order. EverTriggered is
// computed from the tracker's final accumulators only: a crossing that was
// reset before end of stream reports false.
func (r *Recorder) Finalize(finalAccumulated map[behavior.Tag]float64, e *threshold.Evaluator) []behavior.SummaryRow {
	r.finalized = true

	rows := make([]behavior.SummaryRow, 0, len(r.order))

	for _, tag := range r.order {
		limit, _ := e.Limit(tag)

		rows = append(rows, behavior.SummaryRow{
			Tag:           tag,
			TotalSeconds:  r.totals[tag],
			EverTriggered: finalAccumulated[tag] >= limit,
		})
	}

	return rows
}
