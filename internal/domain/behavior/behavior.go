package behavior

import (
	"image"
	"time"
)

// Tag identifies a monitored unsafe driver state, e.g. "Eyes Closed".
// The set of valid tags comes from configuration, never from code.
type Tag string

// Status classifies a tag's accumulated value against its threshold.
type Status int

const (
	// StatusBelow means the accumulated value has not reached the threshold.
	StatusBelow Status = iota
	// StatusCrossed means the accumulated value is at or above the threshold.
	StatusCrossed
)

// String returns a human-readable status name.
func (s Status) String() string {
	if s == StatusCrossed {
		return "CROSSED"
	}

	return "BELOW"
}

// Phase is the alarm lifecycle state.
type Phase int32

const (
	// PhaseIdle means no sound, intensity at the floor.
	PhaseIdle Phase = iota
	// PhaseActive means the alarm is sounding and escalating.
	PhaseActive
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	if p == PhaseActive {
		return "ACTIVE"
	}

	return "IDLE"
}

// Observation is the normalized output of one frame: the set of tags
// currently active, with any regions that produced them.
type Observation struct {
	// Index is the zero-based frame number within the stream.
	Index int
	// Delta is the elapsed time this frame represents.
	Delta time.Duration
	// Regions maps each active tag to the bounding boxes that produced it.
	// A tag present with no regions (landmark pipeline) maps to nil.
	Regions map[Tag][]image.Rectangle
}

// NewObservation returns an empty observation for the given frame.
func NewObservation(index int, delta time.Duration) *Observation {
	return &Observation{
		Index:   index,
		Delta:   delta,
		Regions: make(map[Tag][]image.Rectangle),
	}
}

// Mark records tag as active this frame. Multiple regions may map to the
// same tag; the tag still counts as active once.
func (o *Observation) Mark(tag Tag, regions ...image.Rectangle) {
	o.Regions[tag] = append(o.Regions[tag], regions...)
}

// Active reports whether tag is active this frame.
func (o *Observation) Active(tag Tag) bool {
	_, ok := o.Regions[tag]

	return ok
}

// Empty reports whether no tag is active this frame.
func (o *Observation) Empty() bool {
	return len(o.Regions) == 0
}

// Clone returns a deep copy of the observation.
func (o *Observation) Clone() *Observation {
	if o == nil {
		return nil
	}

	cloned := &Observation{
		Index:   o.Index,
		Delta:   o.Delta,
		Regions: make(map[Tag][]image.Rectangle, len(o.Regions)),
	}

	for tag, regions := range o.Regions {
		if regions == nil {
			cloned.Regions[tag] = nil

			continue
		}

		copied := make([]image.Rectangle, len(regions))
		copy(copied, regions)
		cloned.Regions[tag] = copied
	}

	return cloned
}

// SummaryRow is one line of the end-of-run report.
type SummaryRow struct {
	// Tag is the behavior this row describes.
	Tag Tag
	// TotalSeconds is the total observed duration across the whole session.
	TotalSeconds float64
	// EverTriggered is true when the final accumulated value reached the
	// threshold at end of stream.
	EverTriggered bool
}
