package measure

import (
	"image"
	"math"
)

// Point is a pixel coordinate on the displayed image.
type Point struct {
	X, Y int
}

// Pt converts p to an image.Point.
func (p Point) Pt() image.Point { return image.Point{X: p.X, Y: p.Y} }

// Distance returns the Euclidean pixel distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// Segment is a pair of clicked points.
type Segment struct {
	A, B Point
}

// Pixels returns the segment length in pixels.
func (s Segment) Pixels() float64 { return Distance(s.A, s.B) }

// Calibration maps a known pixel length to its real length in centimeters.
// The zero value is "unset".
type Calibration struct {
	PixelLength float64
	RealLength  float64
}

// Valid reports whether both lengths are positive.
func (c Calibration) Valid() bool { return c.PixelLength > 0 && c.RealLength > 0 }

// Measurement is the result of one completed four-point cycle.
type Measurement struct {
	Known         Segment
	Unknown       Segment
	KnownPixels   float64
	UnknownPixels float64
	RealLength    float64 // centimeters
	Calibration   Calibration
}

// Phase enumerates the click-state of the Measurer.
type Phase int

const (
	PhaseNoImage Phase = iota
	PhaseClicking
	PhaseReady
	PhaseAwaitingReference
)

func (p Phase) String() string {
	switch p {
	case PhaseNoImage:
		return "no-image"
	case PhaseClicking:
		return "clicking"
	case PhaseReady:
		return "ready"
	case PhaseAwaitingReference:
		return "awaiting-reference"
	default:
		return "unknown"
	}
}

// OverflowPolicy decides what happens to the click buffer after a result.
type OverflowPolicy int

const (
	// ResetAfterMeasure empties the buffer once a length has been reported.
	ResetAfterMeasure OverflowPolicy = iota
	// RejectExtra keeps the four points and refuses further clicks until Clear.
	RejectExtra
)

// ParseOverflowPolicy maps config values ("reset", "reject") to a policy.
func ParseOverflowPolicy(s string) OverflowPolicy {
	if s == "reject" {
		return RejectExtra
	}
	return ResetAfterMeasure
}

// Key is a key symbol delivered by the display.
type Key string

const (
	KeyReference Key = "r"
	KeyQuit      Key = "q"
	KeyClear     Key = "c"
	KeyCancel    Key = "Escape"
)

// Display is the rendering surface and event source driving a Measurer.
type Display interface {
	Show(img image.Image)
	OnClick(handler func(x, y int))
	PollKey() (Key, bool)
}
