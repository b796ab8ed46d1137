package view

import (
	"strings"

	"github.com/soocke/pixel-ruler-go/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// StatusPanel shows the latest message, the active calibration and the
// recent results.
type StatusPanel interface {
	SetStatus(s string)
	SetCalibration(s string)
	SetHistory(lines []string)
}

type statusPanel struct {
	statusLbl  *TLabelWidget
	calibLbl   *TLabelWidget
	historyLbl *TLabelWidget
}

// NewStatusPanel grids the status label on row (spanning cols columns) and
// the calibration and history labels on row+1.
func NewStatusPanel(row, cols int) StatusPanel {
	s := &statusPanel{
		statusLbl:  TLabel(Style(theme.StyleStatusLabel), Anchor("w")),
		calibLbl:   TLabel(Style(theme.StyleCalibLabel), Anchor("w")),
		historyLbl: TLabel(Style(theme.StyleHistoryLabel), Anchor("nw"), Justify("left")),
	}
	Grid(s.statusLbl, Row(row), Column(0), Columnspan(cols), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	Grid(s.calibLbl, Row(row+1), Column(0), Sticky("nw"), Padx("0.4m"), Pady("0.3m"))
	Grid(s.historyLbl, Row(row+1), Column(1), Columnspan(cols-1), Sticky("nwe"), Padx("0.4m"), Pady("0.3m"))
	return s
}

func (s *statusPanel) SetStatus(text string) {
	if s == nil || s.statusLbl == nil {
		return
	}
	s.statusLbl.Configure(Txt(text))
}

func (s *statusPanel) SetCalibration(text string) {
	if s == nil || s.calibLbl == nil {
		return
	}
	s.calibLbl.Configure(Txt(text))
}

func (s *statusPanel) SetHistory(lines []string) {
	if s == nil || s.historyLbl == nil {
		return
	}
	s.historyLbl.Configure(Txt(strings.Join(lines, "\n")))
}
