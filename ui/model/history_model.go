package model

import (
	"time"

	"github.com/soocke/pixel-ruler-go/domain/measure"
)

// Entry is one reported measurement.
type Entry struct {
	At          time.Time
	Measurement measure.Measurement
}

// HistoryModel keeps the most recent measurements of the session, newest last.
// It is decoupled from the UI; presenters push results in and read Entries().
// The zero value keeps a single entry.
type HistoryModel struct {
	limit   int
	entries []Entry
	total   int
}

// NewHistoryModel returns a model retaining at most limit entries.
func NewHistoryModel(limit int) *HistoryModel {
	if limit <= 0 {
		limit = 1
	}
	return &HistoryModel{limit: limit}
}

// Record appends a measurement, evicting the oldest entry when full.
func (m *HistoryModel) Record(res measure.Measurement, now time.Time) {
	if m == nil {
		return
	}
	limit := m.limit
	if limit <= 0 {
		limit = 1
	}
	m.entries = append(m.entries, Entry{At: now, Measurement: res})
	if over := len(m.entries) - limit; over > 0 {
		m.entries = append(m.entries[:0], m.entries[over:]...)
	}
	m.total++
}

// Entries returns a copy of the retained entries, oldest first.
func (m *HistoryModel) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Last returns the newest entry.
func (m *HistoryModel) Last() (Entry, bool) {
	if m == nil || len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

// Total counts every recorded measurement, evicted ones included.
func (m *HistoryModel) Total() int {
	if m == nil {
		return 0
	}
	return m.total
}
