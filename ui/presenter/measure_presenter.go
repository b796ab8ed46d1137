package presenter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/soocke/pixel-ruler-go/domain/measure"
	"github.com/soocke/pixel-ruler-go/ui/model"
	"github.com/soocke/pixel-ruler-go/ui/text"
)

// MeasureView is the part of the window the presenter writes to.
type MeasureView interface {
	SetStatus(string)
	SetCalibration(string)
	SetHistory([]string)
	SetReferenceInput(active bool)
}

// MeasurePresenter receives Measurer events and turns them into localized
// status text, console lines and history entries.
//
// Events are queued by OnEvent and reflected on the next Tick.
type MeasurePresenter struct {
	view    MeasureView
	history *model.HistoryModel
	printer *text.Printer
	out     io.Writer // console; nil disables
	logger  *slog.Logger
	pending []measure.Event
}

func NewMeasurePresenter(view MeasureView, history *model.HistoryModel, printer *text.Printer, out io.Writer, logger *slog.Logger) *MeasurePresenter {
	if printer == nil {
		printer = text.NewPrinter("")
	}
	return &MeasurePresenter{view: view, history: history, printer: printer, out: out, logger: logger}
}

// Greet prints the usage instructions and shows the first one as status.
func (p *MeasurePresenter) Greet() {
	if p == nil {
		return
	}
	lines := p.printer.Lines(
		text.MsgInstructClick,
		text.MsgInstructSegments,
		text.MsgInstructReference,
		text.MsgInstructClear,
		text.MsgInstructQuit,
	)
	for _, l := range lines {
		p.println(l)
	}
	if p.view != nil {
		p.view.SetStatus(lines[0])
		p.view.SetCalibration(p.printer.Sprintf(text.MsgUncalibrated))
	}
}

// OnEvent queues an event from the Measurer listener.
func (p *MeasurePresenter) OnEvent(e measure.Event) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, e)
}

// Tick flushes queued events to the view in order and clears the queue.
func (p *MeasurePresenter) Tick(now time.Time) {
	if p == nil || len(p.pending) == 0 {
		return
	}
	events := p.pending
	p.pending = nil
	for _, e := range events {
		p.apply(e, now)
	}
}

// Report renders one event immediately. Used before the window loop runs,
// e.g. for a failed image load.
func (p *MeasurePresenter) Report(e measure.Event) {
	if p == nil {
		return
	}
	p.apply(e, time.Now())
}

func (p *MeasurePresenter) apply(e measure.Event, now time.Time) {
	switch e.Kind {
	case measure.EventImageLoaded:
		p.status(p.printer.Sprintf(text.MsgImageLoaded, e.Path), false)
	case measure.EventPointAdded:
		p.status(p.printer.Sprintf(text.MsgPointAdded, e.Index, e.Point.X, e.Point.Y), false)
	case measure.EventAwaitingReference:
		p.status(p.printer.Sprintf(text.MsgPromptReference), true)
		p.input(true)
	case measure.EventCalibrated:
		c := e.Calibration
		p.status(p.printer.Sprintf(text.MsgReferenceSet, c.RealLength, c.PixelLength), true)
		if p.view != nil {
			p.view.SetCalibration(p.printer.Sprintf(text.MsgCalibrated, c.RealLength, c.PixelLength))
		}
		p.input(false)
	case measure.EventMeasured:
		p.status(p.printer.Sprintf(text.MsgResult, e.Measurement.RealLength), true)
		p.history.Record(e.Measurement, now)
		p.refreshHistory()
	case measure.EventCleared:
		p.status(p.printer.Sprintf(text.MsgCleared), false)
		p.input(false)
	case measure.EventReferenceCancelled:
		p.status(p.printer.Sprintf(text.MsgReferenceCancelled), true)
		p.input(false)
	case measure.EventDiagnostic:
		p.status(p.Describe(e), true)
	}
}

// Describe maps a diagnostic to its localized message.
func (p *MeasurePresenter) Describe(e measure.Event) string {
	err := e.Err
	switch {
	case err == nil:
		return ""
	case errors.Is(err, measure.ErrImageLoad):
		return p.printer.Sprintf(text.MsgImageLoadFailed, e.Path)
	case errors.Is(err, measure.ErrCalibrationMissing):
		return p.printer.Sprintf(text.MsgNeedCalibration)
	case errors.Is(err, measure.ErrInsufficientPoints):
		return p.printer.Sprintf(text.MsgNeedTwoPoints)
	case errors.Is(err, measure.ErrInvalidCalibration):
		return p.printer.Sprintf(text.MsgInvalidReference)
	case errors.Is(err, measure.ErrBufferFull):
		return p.printer.Sprintf(text.MsgBufferFull)
	case errors.Is(err, measure.ErrAwaitingReference):
		return p.printer.Sprintf(text.MsgAwaitingReference)
	case errors.Is(err, measure.ErrDegenerateSegment):
		return p.printer.Sprintf(text.MsgDegenerateSegment)
	case errors.Is(err, measure.ErrNoImage):
		return p.printer.Sprintf(text.MsgNoImage)
	default:
		return p.printer.Sprintf(text.MsgUnexpected, err)
	}
}

func (p *MeasurePresenter) refreshHistory() {
	if p.view == nil {
		return
	}
	entries := p.history.Entries()
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, p.printer.Sprintf(text.MsgHistory, p.history.Total()))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		lines = append(lines, fmt.Sprintf("%s  %s", e.At.Format("15:04:05"),
			p.printer.Sprintf(text.MsgResult, e.Measurement.RealLength)))
	}
	p.view.SetHistory(lines)
}

func (p *MeasurePresenter) status(s string, console bool) {
	if p.view != nil {
		p.view.SetStatus(s)
	}
	if console {
		p.println(s)
	}
}

func (p *MeasurePresenter) input(active bool) {
	if p.view != nil {
		p.view.SetReferenceInput(active)
	}
}

func (p *MeasurePresenter) println(s string) {
	if p.out == nil || s == "" {
		return
	}
	if _, err := fmt.Fprintln(p.out, s); err != nil && p.logger != nil {
		p.logger.Warn("console write failed", "error", err)
	}
}
