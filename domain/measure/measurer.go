package measure

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/soocke/pixel-ruler-go/domain/raster"
)

// MaxPoints is the size of one measurement cycle: known pair then unknown pair.
const MaxPoints = 4

// Options configures a Measurer.
type Options struct {
	Scale    float64 // display downscale factor, 0.5 halves both sides
	Style    raster.MarkerStyle
	Overflow OverflowPolicy
}

// DefaultOptions halves the photo and resets the buffer after each result.
func DefaultOptions() Options {
	return Options{Scale: 0.5, Style: raster.DefaultMarkerStyle(), Overflow: ResetAfterMeasure}
}

// Measurer owns the click buffer, the calibration and the displayed image.
// It is driven from a single goroutine (the display's event loop) and is not
// safe for concurrent use.
type Measurer struct {
	logger    *slog.Logger
	display   Display
	opts      Options
	base      image.Image // downscaled photo without markers
	canvas    image.Image // base plus markers, last shown
	clicks    []Point
	drawn     []Point // markers on canvas; outlives a reset buffer until the next click
	calib     Calibration
	awaiting  bool
	hooked    bool
	listeners []Listener
}

// NewMeasurer returns a Measurer in the NoImage phase.
func NewMeasurer(logger *slog.Logger, display Display, opts Options) *Measurer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultOptions().Scale
	}
	return &Measurer{logger: logger, display: display, opts: opts}
}

// AddListener registers l for every subsequent event.
func (m *Measurer) AddListener(l Listener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

// LoadImage decodes the photo at path, downscales it and shows it on the
// display. On failure nothing is shown and the error wraps ErrImageLoad.
func (m *Measurer) LoadImage(path string) error {
	img, info, err := raster.Load(path, m.opts.Scale)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrImageLoad, path, err)
		m.logger.Error("image load failed", "path", path, "error", err)
		m.emit(Event{Kind: EventDiagnostic, Path: path, Err: err})
		return err
	}
	m.logger.Info("image loaded",
		"path", info.Path,
		"size", info.Size,
		"original", info.Original.Size().String(),
		"display", info.Display.Size().String(),
	)
	m.attach(img, path)
	return nil
}

// LoadFrom shows an already decoded image, downscaled like LoadImage.
// label identifies the source in events and logs.
func (m *Measurer) LoadFrom(img image.Image, label string) error {
	if img == nil || img.Bounds().Empty() {
		err := fmt.Errorf("%w: %s: empty image", ErrImageLoad, label)
		m.emit(Event{Kind: EventDiagnostic, Path: label, Err: err})
		return err
	}
	scaled := raster.Downscale(img, m.opts.Scale)
	m.logger.Info("image loaded", "source", label, "display", scaled.Bounds().Size().String())
	m.attach(scaled, label)
	return nil
}

func (m *Measurer) attach(img image.Image, label string) {
	m.base = img
	m.canvas = img
	m.clicks = nil
	m.drawn = nil
	m.awaiting = false
	if m.display != nil {
		m.display.Show(img)
		if !m.hooked {
			m.display.OnClick(func(x, y int) { _ = m.OnClick(x, y) })
			m.hooked = true
		}
	}
	m.emit(Event{Kind: EventImageLoaded, Path: label})
}

// OnClick records a point and draws its marker. The fourth point triggers
// ComputeLength.
func (m *Measurer) OnClick(x, y int) error {
	if m.base == nil {
		return m.reject(ErrNoImage)
	}
	if m.awaiting {
		return m.reject(ErrAwaitingReference)
	}
	if len(m.clicks) >= MaxPoints {
		return m.reject(ErrBufferFull)
	}
	if len(m.clicks) == 0 {
		// new cycle: drop markers left from the previous measurement
		m.drawn = m.drawn[:0]
	}
	p := Point{X: x, Y: y}
	m.clicks = append(m.clicks, p)
	m.drawn = append(m.drawn, p)
	m.redraw()
	m.logger.Debug("point recorded", "index", len(m.clicks), "x", x, "y", y)
	m.emit(Event{Kind: EventPointAdded, Point: p, Index: len(m.clicks)})
	if len(m.clicks) == MaxPoints {
		_, _ = m.ComputeLength()
	}
	return nil
}

// ComputeLength solves the unknown segment (points 2-3) against the known
// segment (points 0-1). It is a no-op returning ErrInsufficientPoints unless
// exactly four points are recorded. Without calibration it returns
// ErrCalibrationMissing and produces no number.
func (m *Measurer) ComputeLength() (Measurement, error) {
	if len(m.clicks) != MaxPoints {
		return Measurement{}, ErrInsufficientPoints
	}
	known := Segment{A: m.clicks[0], B: m.clicks[1]}
	unknown := Segment{A: m.clicks[2], B: m.clicks[3]}
	knownPx, unknownPx := known.Pixels(), unknown.Pixels()
	if !m.calib.Valid() {
		return Measurement{}, m.reject(ErrCalibrationMissing)
	}
	if knownPx == 0 {
		return Measurement{}, m.reject(ErrDegenerateSegment)
	}
	res := Measurement{
		Known:         known,
		Unknown:       unknown,
		KnownPixels:   knownPx,
		UnknownPixels: unknownPx,
		RealLength:    unknownPx * m.calib.RealLength / knownPx,
		Calibration:   m.calib,
	}
	m.logger.Info("measurement",
		"known_px", knownPx,
		"unknown_px", unknownPx,
		"real_cm", res.RealLength,
	)
	if m.opts.Overflow == ResetAfterMeasure {
		m.clicks = nil
	}
	m.emit(Event{Kind: EventMeasured, Measurement: res})
	return res, nil
}

// SetReference stores the calibration. Non-positive or non-finite lengths are
// rejected with ErrInvalidCalibration and leave the previous calibration intact.
func (m *Measurer) SetReference(pixelLength, realLength float64) error {
	if !positiveFinite(pixelLength) || !positiveFinite(realLength) {
		return m.reject(fmt.Errorf("%w: %.1f cm over %.1f px", ErrInvalidCalibration, realLength, pixelLength))
	}
	m.calib = Calibration{PixelLength: pixelLength, RealLength: realLength}
	m.logger.Info("reference set", "real_cm", realLength, "pixels", pixelLength)
	m.emit(Event{Kind: EventCalibrated, Calibration: m.calib})
	return nil
}

// BeginReference enters the AwaitingReference phase. At least the two points
// of the known segment must be recorded.
func (m *Measurer) BeginReference() error {
	if m.base == nil {
		return m.reject(ErrNoImage)
	}
	if m.awaiting {
		return nil
	}
	if len(m.clicks) < 2 {
		return m.reject(ErrInsufficientPoints)
	}
	m.awaiting = true
	m.emit(Event{Kind: EventAwaitingReference})
	return nil
}

// SubmitReference parses the typed real length (cm) and calibrates against
// the pixel distance of the first two points. With four points recorded the
// length is computed right away. Invalid input keeps the prompt open.
func (m *Measurer) SubmitReference(text string) error {
	if len(m.clicks) < 2 {
		return m.reject(ErrInsufficientPoints)
	}
	cm, err := parseLength(text)
	if err != nil {
		return m.reject(err)
	}
	was := m.awaiting
	m.awaiting = false
	if err := m.SetReference(Distance(m.clicks[0], m.clicks[1]), cm); err != nil {
		m.awaiting = was
		return err
	}
	if len(m.clicks) == MaxPoints {
		_, _ = m.ComputeLength()
	}
	return nil
}

// CancelReference leaves the AwaitingReference phase without calibrating.
func (m *Measurer) CancelReference() {
	if !m.awaiting {
		return
	}
	m.awaiting = false
	m.emit(Event{Kind: EventReferenceCancelled})
}

// Clear empties the click buffer and removes all markers. Calibration is kept.
func (m *Measurer) Clear() {
	if m.base == nil {
		return
	}
	m.clicks = nil
	m.drawn = nil
	m.awaiting = false
	m.redraw()
	m.emit(Event{Kind: EventCleared})
}

// HandleKey applies one key press and reports whether the session should end.
// While awaiting the reference only Escape is honoured.
func (m *Measurer) HandleKey(k Key) (quit bool) {
	if len(k) == 1 {
		k = Key(strings.ToLower(string(k)))
	}
	if m.awaiting {
		if k == KeyCancel {
			m.CancelReference()
		}
		return false
	}
	switch k {
	case KeyQuit:
		m.logger.Info("quit requested")
		return true
	case KeyReference:
		_ = m.BeginReference()
	case KeyClear:
		m.Clear()
	case KeyCancel:
		m.CancelReference()
	}
	return false
}

// Poll drains pending key presses from the display. It reports true once a
// quit key was seen; remaining keys stay queued.
func (m *Measurer) Poll() (quit bool) {
	if m.display == nil {
		return false
	}
	for {
		k, ok := m.display.PollKey()
		if !ok {
			return false
		}
		if m.HandleKey(k) {
			return true
		}
	}
}

// Points returns a copy of the click buffer.
func (m *Measurer) Points() []Point {
	out := make([]Point, len(m.clicks))
	copy(out, m.clicks)
	return out
}

// Calibration returns the current calibration (zero when unset).
func (m *Measurer) Calibration() Calibration { return m.calib }

// Calibrated reports whether a valid calibration is set.
func (m *Measurer) Calibrated() bool { return m.calib.Valid() }

// Canvas returns the image last shown, markers included.
func (m *Measurer) Canvas() image.Image { return m.canvas }

// Phase reports the current click-state.
func (m *Measurer) Phase() Phase {
	switch {
	case m.base == nil:
		return PhaseNoImage
	case m.awaiting:
		return PhaseAwaitingReference
	case len(m.clicks) == MaxPoints:
		return PhaseReady
	default:
		return PhaseClicking
	}
}

func (m *Measurer) redraw() {
	pts := make([]image.Point, len(m.drawn))
	for i, p := range m.drawn {
		pts[i] = p.Pt()
	}
	m.canvas = raster.DrawMarkers(m.base, pts, m.opts.Style)
	if m.display != nil {
		m.display.Show(m.canvas)
	}
}

func (m *Measurer) reject(err error) error {
	m.logger.Debug("rejected", "phase", m.Phase().String(), "error", err)
	m.emit(Event{Kind: EventDiagnostic, Err: err})
	return err
}

func (m *Measurer) emit(e Event) {
	e.Phase = m.Phase()
	for _, l := range m.listeners {
		l(e)
	}
}

func parseLength(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, "cm")
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidCalibration, strings.TrimSpace(text))
	}
	return v, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
