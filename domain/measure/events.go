package measure

// EventKind identifies what changed in the Measurer.
type EventKind int

const (
	EventImageLoaded EventKind = iota + 1
	EventPointAdded
	EventAwaitingReference
	EventCalibrated
	EventMeasured
	EventCleared
	EventReferenceCancelled
	EventDiagnostic
)

// Event is delivered to listeners after every state change or rejection.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind        EventKind
	Phase       Phase
	Path        string
	Point       Point
	Index       int // 1-based index of the added point
	Calibration Calibration
	Measurement Measurement
	Err         error
}

// Listener is called synchronously on the Measurer's goroutine.
type Listener func(Event)
