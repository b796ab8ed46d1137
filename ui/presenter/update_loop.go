package presenter

import "time"

// KeySource drains pending key presses and reports whether the session
// should end. *measure.Measurer satisfies it.
type KeySource interface{ Poll() (quit bool) }

// Loop drives periodic updates from the window's timer.
//
// Each Tick polls keys, flushes the presenter and invokes the scheduler
// callback. On quit it calls Quit instead of rescheduling. The zero value is
// usable (methods are nil-safe).
type Loop struct {
	Keys     KeySource
	Measure  *MeasurePresenter
	Schedule func()
	Quit     func()
	stopped  bool
}

func NewLoop(keys KeySource, measure *MeasurePresenter, schedule, quit func()) *Loop {
	return &Loop{Keys: keys, Measure: measure, Schedule: schedule, Quit: quit}
}

func (l *Loop) Tick() {
	if l == nil || l.stopped {
		return
	}
	quit := l.Keys != nil && l.Keys.Poll()
	if l.Measure != nil {
		l.Measure.Tick(time.Now())
	}
	if quit {
		l.stopped = true
		if l.Quit != nil {
			l.Quit()
		}
		return
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}

// Stopped reports whether a quit has been processed.
func (l *Loop) Stopped() bool { return l != nil && l.stopped }
