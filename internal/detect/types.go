package detect

import "image"

// Detection is one classified region from the whole-frame object detector.
type Detection struct {
	// Label is the raw class name, possibly prefixed like "c1 - Texting".
	Label string
	// Confidence is the detector's score in [0, 1].
	Confidence float64
	// Rect is the bounding box in frame pixels.
	Rect image.Rectangle
}

// Point is one facial landmark in frame pixels.
type Point struct {
	X float64
	Y float64
}
