package signal

import (
	"strings"
	"time"

	"github.com/oshokin/driver-sentry/internal/detect"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// labelSeparator splits the class-id prefix from the behavior name.
const labelSeparator = " - "

// Discrete adapts whole-frame object detections into observations. A region
// is active for a tag when its cleaned label matches a configured tag
// exactly; anything else is silently dropped.
type Discrete struct {
	// known is the configured tag set.
	known map[behavior.Tag]struct{}
}

// NewDiscrete creates an adapter for the configured tag set.
func NewDiscrete(tags []behavior.Tag) *Discrete {
	known := make(map[behavior.Tag]struct{}, len(tags))
	for _, tag := range tags {
		known[tag] = struct{}{}
	}

	return &Discrete{known: known}
}

// Observe maps one frame's detections to an observation. Multiple regions
// with the same tag collapse to one active tag carrying all regions.
func (a *Discrete) Observe(index int, delta time.Duration, detections []detect.Detection) *behavior.Observation {
	o := behavior.NewObservation(index, delta)

	for _, d := range detections {
		tag := behavior.Tag(CleanLabel(d.Label))
		if _, ok := a.known[tag]; !ok {
			continue
		}

		o.Mark(tag, d.Rect)
	}

	return o
}

// CleanLabel strips a "<id> - " prefix from a detector label, keeping the
// part after the last separator. Labels without the separator pass through
// unchanged.
func CleanLabel(label string) string {
	i := strings.LastIndex(label, labelSeparator)
	if i < 0 {
		return label
	}

	return strings.TrimSpace(label[i+len(labelSeparator):])
}
