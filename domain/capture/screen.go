package capture

import (
	"errors"
	"image"
	"time"

	"github.com/vova616/screenshot"
)

// Snapshot is a single screen capture used as the photo to measure.
type Snapshot struct {
	Image      *image.RGBA
	CapturedAt time.Time
}

// Grabber captures the full screen or a rectangle of it.
type Grabber interface {
	Grab() (*image.RGBA, error)
	GrabSelection(r image.Rectangle) (*image.RGBA, error)
}

type screenGrabber struct{}

// NewScreenGrabber returns a Grabber backed by the OS screenshot API.
func NewScreenGrabber() Grabber { return screenGrabber{} }

// Grab returns a screen capture of the current active monitor.
func (screenGrabber) Grab() (*image.RGBA, error) {
	return screenshot.CaptureScreen()
}

func (screenGrabber) GrabSelection(r image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(r)
}

// Take captures the selection when it is non-empty, otherwise the full screen.
func Take(g Grabber, selection *image.Rectangle) (Snapshot, error) {
	if g == nil {
		return Snapshot{}, errors.New("nil grabber")
	}
	var (
		img *image.RGBA
		err error
	)
	if selection != nil && !selection.Empty() {
		img, err = g.GrabSelection(*selection)
	} else {
		img, err = g.Grab()
	}
	if err != nil {
		return Snapshot{}, err
	}
	if img == nil || img.Bounds().Empty() {
		return Snapshot{}, errors.New("empty capture")
	}
	return Snapshot{Image: img, CapturedAt: time.Now()}, nil
}
