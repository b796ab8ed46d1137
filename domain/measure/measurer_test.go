package measure

import (
	"errors"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

type fakeDisplay struct {
	shown   []image.Image
	handler func(x, y int)
	hooks   int
	keys    []Key
}

func (d *fakeDisplay) Show(img image.Image)     { d.shown = append(d.shown, img) }
func (d *fakeDisplay) OnClick(h func(x, y int)) { d.handler = h; d.hooks++ }
func (d *fakeDisplay) click(x, y int)           { d.handler(x, y) }
func (d *fakeDisplay) press(keys ...Key)        { d.keys = append(d.keys, keys...) }
func (d *fakeDisplay) PollKey() (Key, bool) {
	if len(d.keys) == 0 {
		return "", false
	}
	k := d.keys[0]
	d.keys = d.keys[1:]
	return k, true
}

type eventLog struct{ events []Event }

func (l *eventLog) listener(e Event) { l.events = append(l.events, e) }

func (l *eventLog) count(kind EventKind) int {
	n := 0
	for _, e := range l.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (l *eventLog) last(kind EventKind) (Event, bool) {
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Kind == kind {
			return l.events[i], true
		}
	}
	return Event{}, false
}

func writePhoto(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipe.png")
	if err := imaging.Save(imaging.New(w, h, color.NRGBA{R: 90, G: 90, B: 90, A: 255}), path); err != nil {
		t.Fatalf("save photo: %v", err)
	}
	return path
}

// newLoaded returns a Measurer with a 1000x800 photo shown at half size.
func newLoaded(t *testing.T, opts Options) (*Measurer, *fakeDisplay, *eventLog) {
	t.Helper()
	d := &fakeDisplay{}
	m := NewMeasurer(nil, d, opts)
	log := &eventLog{}
	m.AddListener(log.listener)
	if err := m.LoadImage(writePhoto(t, 1000, 800)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m, d, log
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDistance_EuclideanAndSymmetric(t *testing.T) {
	cases := []struct {
		a, b Point
		want float64
	}{
		{Point{0, 0}, Point{3, 4}, 5},
		{Point{10, 10}, Point{10, 110}, 100},
		{Point{-2, 7}, Point{-2, 7}, 0},
		{Point{1, 1}, Point{2, 2}, math.Sqrt2},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); !almost(got, c.want) {
			t.Fatalf("Distance(%v,%v)=%v want %v", c.a, c.b, got, c.want)
		}
		if Distance(c.a, c.b) != Distance(c.b, c.a) {
			t.Fatalf("distance not symmetric for %v %v", c.a, c.b)
		}
	}
}

func TestLoadImage_ShowsHalfSizeAndHooksClicks(t *testing.T) {
	m, d, log := newLoaded(t, DefaultOptions())
	if len(d.shown) != 1 {
		t.Fatalf("expected one Show, got %d", len(d.shown))
	}
	if b := d.shown[0].Bounds(); b.Dx() != 500 || b.Dy() != 400 {
		t.Fatalf("expected 500x400 display, got %v", b)
	}
	if d.hooks != 1 || d.handler == nil {
		t.Fatalf("expected click handler registered once, got %d", d.hooks)
	}
	if m.Phase() != PhaseClicking {
		t.Fatalf("expected clicking phase, got %v", m.Phase())
	}
	if log.count(EventImageLoaded) != 1 {
		t.Fatalf("expected image loaded event")
	}
}

func TestLoadImage_InvalidPathShowsNothing(t *testing.T) {
	d := &fakeDisplay{}
	m := NewMeasurer(nil, d, DefaultOptions())
	err := m.LoadImage(filepath.Join(t.TempDir(), "missing.jpg"))
	if !errors.Is(err, ErrImageLoad) {
		t.Fatalf("expected ErrImageLoad, got %v", err)
	}
	if len(d.shown) != 0 || d.handler != nil {
		t.Fatalf("display must stay untouched on load failure")
	}
	if m.Phase() != PhaseNoImage {
		t.Fatalf("expected no-image phase, got %v", m.Phase())
	}
	if err := m.OnClick(1, 1); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage on click, got %v", err)
	}
}

func TestScenario_CalibrateThenMeasure(t *testing.T) {
	m, d, log := newLoaded(t, DefaultOptions())
	d.click(10, 10)
	d.click(10, 110)
	d.press("r")
	if m.Poll() {
		t.Fatalf("r must not quit")
	}
	if m.Phase() != PhaseAwaitingReference {
		t.Fatalf("expected awaiting phase, got %v", m.Phase())
	}
	if err := m.SubmitReference("50"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	c := m.Calibration()
	if !almost(c.PixelLength, 100) || !almost(c.RealLength, 50) {
		t.Fatalf("unexpected calibration %+v", c)
	}
	d.click(200, 200)
	d.click(200, 250)
	ev, ok := log.last(EventMeasured)
	if !ok {
		t.Fatalf("expected a measurement")
	}
	if !almost(ev.Measurement.RealLength, 25) {
		t.Fatalf("expected 25.0 cm, got %v", ev.Measurement.RealLength)
	}
	if log.count(EventMeasured) != 1 {
		t.Fatalf("expected exactly one computation, got %d", log.count(EventMeasured))
	}
}

func TestComputeLength_LinearRatio(t *testing.T) {
	m, d, _ := newLoaded(t, Options{Scale: 0.5, Overflow: RejectExtra})
	if err := m.SetReference(100, 50); err != nil {
		t.Fatalf("set reference: %v", err)
	}
	d.click(0, 0)
	d.click(100, 0)
	d.click(0, 0)
	d.click(0, 200)
	res, err := m.ComputeLength()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !almost(res.RealLength, 100) {
		t.Fatalf("expected 100.0 cm, got %v", res.RealLength)
	}
	if !almost(res.KnownPixels, 100) || !almost(res.UnknownPixels, 200) {
		t.Fatalf("unexpected pixel lengths %+v", res)
	}
}

func TestComputeLength_UncalibratedGivesOnlyDiagnostic(t *testing.T) {
	m, d, log := newLoaded(t, DefaultOptions())
	for _, p := range []Point{{1, 1}, {1, 51}, {5, 5}, {5, 25}} {
		d.click(p.X, p.Y)
	}
	if log.count(EventMeasured) != 0 {
		t.Fatalf("no numeric result expected without calibration")
	}
	ev, ok := log.last(EventDiagnostic)
	if !ok || !errors.Is(ev.Err, ErrCalibrationMissing) {
		t.Fatalf("expected calibration missing diagnostic, got %+v", ev)
	}
	if _, err := m.ComputeLength(); !errors.Is(err, ErrCalibrationMissing) {
		t.Fatalf("expected ErrCalibrationMissing, got %v", err)
	}
	if m.Phase() != PhaseReady {
		t.Fatalf("points must be kept for a later calibration, phase=%v", m.Phase())
	}
	// fifth click is refused until calibrated or cleared
	if err := m.OnClick(9, 9); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("expected ErrBufferFull, got %v", err)
	}
}

func TestSubmitReference_WithFourPointsComputesImmediately(t *testing.T) {
	m, d, log := newLoaded(t, DefaultOptions())
	for _, p := range []Point{{10, 10}, {10, 110}, {200, 200}, {200, 250}} {
		d.click(p.X, p.Y)
	}
	if err := m.BeginReference(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.SubmitReference(" 50 cm "); err != nil {
		t.Fatalf("submit: %v", err)
	}
	ev, ok := log.last(EventMeasured)
	if !ok || !almost(ev.Measurement.RealLength, 25) {
		t.Fatalf("expected 25 cm after calibration, got %+v", ev)
	}
	if len(m.Points()) != 0 {
		t.Fatalf("reset policy should empty the buffer, got %v", m.Points())
	}
}

func TestComputeLength_NoOpBelowFourPoints(t *testing.T) {
	m, d, log := newLoaded(t, DefaultOptions())
	_ = m.SetReference(10, 10)
	d.click(1, 1)
	d.click(2, 2)
	d.click(3, 3)
	before := len(log.events)
	if _, err := m.ComputeLength(); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if len(log.events) != before {
		t.Fatalf("no-op must not emit events")
	}
}

func TestComputeLength_DegenerateKnownSegment(t *testing.T) {
	m, d, log := newLoaded(t, DefaultOptions())
	_ = m.SetReference(100, 50)
	for _, p := range []Point{{4, 4}, {4, 4}, {0, 0}, {0, 10}} {
		d.click(p.X, p.Y)
	}
	if log.count(EventMeasured) != 0 {
		t.Fatalf("zero-length known segment must not produce a result")
	}
	if ev, _ := log.last(EventDiagnostic); !errors.Is(ev.Err, ErrDegenerateSegment) {
		t.Fatalf("expected ErrDegenerateSegment, got %v", ev.Err)
	}
}

func TestResetPolicy_NextCycleStartsFresh(t *testing.T) {
	m, d, log := newLoaded(t, DefaultOptions())
	_ = m.SetReference(100, 50)
	for _, p := range []Point{{10, 10}, {10, 110}, {200, 200}, {200, 250}} {
		d.click(p.X, p.Y)
	}
	if len(m.Points()) != 0 {
		t.Fatalf("expected empty buffer after measurement")
	}
	for _, p := range []Point{{0, 0}, {0, 40}, {0, 0}, {30, 40}} {
		d.click(p.X, p.Y)
	}
	if log.count(EventMeasured) != 2 {
		t.Fatalf("expected two measurements, got %d", log.count(EventMeasured))
	}
	ev, _ := log.last(EventMeasured)
	// 50px unknown over 40px known at 50cm reference
	if !almost(ev.Measurement.RealLength, 62.5) {
		t.Fatalf("expected 62.5 cm, got %v", ev.Measurement.RealLength)
	}
}

func TestRejectPolicy_ExtraClicksRefused(t *testing.T) {
	m, d, log := newLoaded(t, Options{Scale: 0.5, Overflow: RejectExtra})
	_ = m.SetReference(100, 50)
	for _, p := range []Point{{10, 10}, {10, 110}, {200, 200}, {200, 250}} {
		d.click(p.X, p.Y)
	}
	if err := m.OnClick(300, 300); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("expected ErrBufferFull, got %v", err)
	}
	if log.count(EventMeasured) != 1 {
		t.Fatalf("a fifth click must not recompute")
	}
	m.Clear()
	if len(m.Points()) != 0 || m.Phase() != PhaseClicking {
		t.Fatalf("clear should empty the buffer")
	}
	if !m.Calibrated() {
		t.Fatalf("clear must keep calibration")
	}
}

func TestBeginReference_NeedsTwoPoints(t *testing.T) {
	m, d, log := newLoaded(t, DefaultOptions())
	d.click(5, 5)
	d.press("r")
	m.Poll()
	if m.Phase() == PhaseAwaitingReference {
		t.Fatalf("must not await reference with one point")
	}
	if ev, _ := log.last(EventDiagnostic); !errors.Is(ev.Err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", ev.Err)
	}
}

func TestSubmitReference_InvalidInputKeepsPrompt(t *testing.T) {
	m, d, _ := newLoaded(t, DefaultOptions())
	d.click(0, 0)
	d.click(0, 10)
	_ = m.BeginReference()
	for _, in := range []string{"abc", "0", "-5", "NaN", "+Inf", ""} {
		if err := m.SubmitReference(in); !errors.Is(err, ErrInvalidCalibration) {
			t.Fatalf("input %q: expected ErrInvalidCalibration, got %v", in, err)
		}
		if m.Phase() != PhaseAwaitingReference {
			t.Fatalf("input %q: prompt should stay open", in)
		}
	}
	if m.Calibrated() {
		t.Fatalf("invalid input must not calibrate")
	}
	if err := m.SubmitReference("12,5"); err != nil {
		t.Fatalf("comma decimal should parse: %v", err)
	}
	if !almost(m.Calibration().RealLength, 12.5) {
		t.Fatalf("unexpected calibration %+v", m.Calibration())
	}
}

func TestSetReference_RejectsNonPositive(t *testing.T) {
	m := NewMeasurer(nil, nil, DefaultOptions())
	if err := m.SetReference(100, 50); err != nil {
		t.Fatalf("valid reference rejected: %v", err)
	}
	if err := m.SetReference(0, 50); !errors.Is(err, ErrInvalidCalibration) {
		t.Fatalf("expected ErrInvalidCalibration, got %v", err)
	}
	if err := m.SetReference(100, -1); !errors.Is(err, ErrInvalidCalibration) {
		t.Fatalf("expected ErrInvalidCalibration, got %v", err)
	}
	if c := m.Calibration(); c.PixelLength != 100 || c.RealLength != 50 {
		t.Fatalf("previous calibration must survive a rejected one, got %+v", c)
	}
}

func TestAwaitingReference_BlocksClicksAndKeys(t *testing.T) {
	m, d, _ := newLoaded(t, DefaultOptions())
	d.click(0, 0)
	d.click(0, 10)
	d.press("r")
	m.Poll()
	if err := m.OnClick(3, 3); !errors.Is(err, ErrAwaitingReference) {
		t.Fatalf("expected ErrAwaitingReference, got %v", err)
	}
	d.press("q", "c")
	if m.Poll() {
		t.Fatalf("q typed into the prompt must not quit")
	}
	if len(m.Points()) != 2 {
		t.Fatalf("c typed into the prompt must not clear")
	}
	d.press(KeyCancel)
	m.Poll()
	if m.Phase() != PhaseClicking {
		t.Fatalf("escape should cancel the prompt, phase=%v", m.Phase())
	}
}

func TestPoll_QuitStopsDraining(t *testing.T) {
	m, d, _ := newLoaded(t, DefaultOptions())
	d.press("Q", "c")
	if !m.Poll() {
		t.Fatalf("expected quit")
	}
	if len(d.keys) != 1 {
		t.Fatalf("keys after quit should stay queued, got %v", d.keys)
	}
}

func TestMarkers_DrawnAtClicks(t *testing.T) {
	m, d, _ := newLoaded(t, DefaultOptions())
	d.click(50, 60)
	r, g, b, _ := m.Canvas().At(50, 60).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Fatalf("expected red marker, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
	if len(d.shown) != 2 {
		t.Fatalf("expected redraw on click, got %d shows", len(d.shown))
	}
	m.Clear()
	r, _, _, _ = m.Canvas().At(50, 60).RGBA()
	if r>>8 != 90 {
		t.Fatalf("clear should remove markers, got r=%d", r>>8)
	}
}

func TestLoadFrom_ScreenImage(t *testing.T) {
	d := &fakeDisplay{}
	m := NewMeasurer(nil, d, DefaultOptions())
	if err := m.LoadFrom(image.NewRGBA(image.Rect(0, 0, 64, 32)), "screen"); err != nil {
		t.Fatalf("load from: %v", err)
	}
	if b := d.shown[0].Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Fatalf("expected 32x16, got %v", b)
	}
	if err := m.LoadFrom(nil, "screen"); !errors.Is(err, ErrImageLoad) {
		t.Fatalf("expected ErrImageLoad for nil image, got %v", err)
	}
}
