package view

import (
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ReferenceInput is the one-line field where the known length is typed.
// It stays disabled until the measurer asks for a reference.
type ReferenceInput interface {
	SetActive(active bool)
	Active() bool
}

type referenceInput struct {
	field  *TextWidget
	active bool
}

// NewReferenceInput grids the field at (row, col). onSubmit receives the
// typed text when Return is pressed.
func NewReferenceInput(row, col int, onSubmit func(string)) ReferenceInput {
	v := &referenceInput{field: Text(Height(1), Width(12))}
	Grid(v.field, Row(row), Column(col), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	Bind(v.field, "<Return>", Command(func() {
		if !v.active || onSubmit == nil {
			return
		}
		onSubmit(v.text())
		v.reset()
	}))
	v.SetActive(false)
	return v
}

func (v *referenceInput) SetActive(active bool) {
	if v == nil || v.field == nil {
		return
	}
	v.active = active
	if active {
		v.field.Configure(State("normal"))
		v.reset()
		Focus(v.field)
		return
	}
	v.reset()
	Focus(App)
}

func (v *referenceInput) Active() bool { return v != nil && v.active }

func (v *referenceInput) text() string {
	return strings.TrimSpace(strings.Join(v.field.Get("1.0", END), ""))
}

// reset empties the field; Tk ignores edits while it is disabled.
func (v *referenceInput) reset() {
	if v.active {
		v.field.Delete("1.0", END)
		return
	}
	v.field.Configure(State("normal"))
	v.field.Delete("1.0", END)
	v.field.Configure(State("disabled"))
}
