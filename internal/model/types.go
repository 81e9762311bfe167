// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

const (
	// MaxSubjectNameLen caps subject names, in characters.
	MaxSubjectNameLen = 50
	// MaxNotesLen caps session notes, in characters.
	MaxNotesLen = 500
	// ExportVersion is written into every export document.
	ExportVersion = "1.0.0"
)

// DateLayout is the wire and display layout of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component, formatted YYYY-MM-DD.
// String comparison of two valid dates matches chronological order.
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s as a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns midnight of d in loc. An invalid date yields the zero time.
func (d Date) Time(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(DateLayout, string(d), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays shifts d by n calendar days.
func (d Date) AddDays(n int) Date {
	t := d.Time(time.UTC)
	if t.IsZero() {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Subject is a named category of study activity.
type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     Color     `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is one completed block of study time.
type Session struct {
	ID        string     `json:"id"`
	SubjectID string     `json:"subjectId"`
	Date      Date       `json:"date"`
	Duration  int        `json:"duration"` // minutes
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewSession carries the caller-supplied fields of a session.
type NewSession struct {
	SubjectID string
	Date      Date
	Duration  int
	StartTime *time.Time
	EndTime   *time.Time
	Notes     *string
}

// SessionUpdate is a partial session update; nil fields are left alone.
type SessionUpdate struct {
	SubjectID *string
	Date      *Date
	Duration  *int
	Notes     *string
}

// SubjectUpdate is a partial subject update; nil fields are left alone.
type SubjectUpdate struct {
	Name  *string
	Color *Color
}

// TimerRecord is the persisted form of the timer state.
// Timestamps are milliseconds since the Unix epoch.
type TimerRecord struct {
	IsRunning      bool    `json:"isRunning"`
	IsPaused       bool    `json:"isPaused"`
	SubjectID      *string `json:"subjectId"`
	StartTime      *int64  `json:"startTime"`
	PausedTime     int64   `json:"pausedTime"`
	PauseTimestamp *int64  `json:"pauseTimestamp"`
}

// Stats holds derived study totals in minutes plus the day streak.
type Stats struct {
	Today     int
	ThisWeek  int
	ThisMonth int
	Streak    int
}

// ExportData is the transportable backup document.
type ExportData struct {
	Subjects   []Subject `json:"subjects"`
	Sessions   []Session `json:"sessions"`
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
}

// ChartView selects the period a chart covers.
type ChartView string

// Chart views.
const (
	ChartDaily   ChartView = "daily"
	ChartWeekly  ChartView = "weekly"
	ChartMonthly ChartView = "monthly"
)

// BarMode selects how chart bars are drawn.
type BarMode string

// Bar modes.
const (
	BarStacked BarMode = "stacked"
	BarSimple  BarMode = "simple"
)

// ChartPoint is one bar of a study chart.
type ChartPoint struct {
	Label string
	Total int            // minutes
	BySub map[string]int // subject id -> minutes
	Empty bool           // outside the tracked range
}
