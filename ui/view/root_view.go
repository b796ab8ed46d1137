package view

import (
	"image"
	"log/slog"

	"github.com/soocke/pixel-ruler-go/domain/measure"
	"github.com/soocke/pixel-ruler-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const columns = 4

// RootView composes the measuring window. It implements measure.Display for
// the Measurer and presenter.MeasureView for the presenter.
type RootView struct {
	title  string
	logger *slog.Logger

	// Subviews
	Photo  PhotoView
	Status StatusPanel
	Input  ReferenceInput

	keys []measure.Key
}

func NewRootView(title string, logger *slog.Logger) *RootView {
	return &RootView{title: title, logger: logger}
}

// Build constructs the layout. onSubmit receives the typed reference length.
// Key presses on the window are queued for PollKey; while the reference field
// is active only Escape is queued so typed digits never act as commands.
func (rv *RootView) Build(onSubmit func(string)) {
	if rv == nil {
		return
	}
	App.WmTitle(rv.title)
	theme.InitStyles()

	// Row 0: photo, rows 1-2: status panel, row 3: input and buttons
	rv.Photo = NewPhotoView(0, columns, rv.logger)
	rv.Status = NewStatusPanel(1, columns)
	rv.Input = NewReferenceInput(3, 0, onSubmit)

	refBtn := TButton(Style(theme.StylePrimaryButton), Txt("Reference (r)"), Command(func() { rv.push(measure.KeyReference) }))
	Grid(refBtn, Row(3), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.3m"))
	clearBtn := TButton(Txt("Clear (c)"), Command(func() { rv.push(measure.KeyClear) }))
	Grid(clearBtn, Row(3), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.3m"))
	quitBtn := TButton(Style(theme.StyleDangerButton), Txt("Quit (q)"), Command(func() { rv.push(measure.KeyQuit) }))
	Grid(quitBtn, Row(3), Column(3), Sticky("we"), Padx("0.2m"), Pady("0.3m"))

	Bind(App, "<KeyPress>", Command(func(e *Event) {
		defer recoverLog(rv.logger, "key handler panic")
		k := measure.Key(e.Keysym)
		if rv.Input != nil && rv.Input.Active() && k != measure.KeyCancel {
			return
		}
		rv.push(k)
	}))
}

func (rv *RootView) push(k measure.Key) {
	if k == "" {
		return
	}
	rv.keys = append(rv.keys, k)
}

// --- measure.Display ---

// Show replaces the displayed photo.
func (rv *RootView) Show(img image.Image) {
	if rv != nil && rv.Photo != nil {
		rv.Photo.Show(img)
	}
}

// OnClick registers the handler for left clicks on the photo.
func (rv *RootView) OnClick(fn func(x, y int)) {
	if rv != nil && rv.Photo != nil {
		rv.Photo.OnClick(fn)
	}
}

// PollKey pops the oldest queued key press.
func (rv *RootView) PollKey() (measure.Key, bool) {
	if rv == nil || len(rv.keys) == 0 {
		return "", false
	}
	k := rv.keys[0]
	rv.keys = rv.keys[1:]
	return k, true
}

// --- presenter.MeasureView ---

func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetStatus(text)
	}
}

func (rv *RootView) SetCalibration(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetCalibration(text)
	}
}

func (rv *RootView) SetHistory(lines []string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetHistory(lines)
	}
}

// SetReferenceInput enables the reference field and gives it focus.
func (rv *RootView) SetReferenceInput(active bool) {
	if rv != nil && rv.Input != nil {
		rv.Input.SetActive(active)
	}
}

var _ measure.Display = (*RootView)(nil)
