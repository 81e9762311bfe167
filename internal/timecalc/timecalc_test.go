package timecalc_test

import (
	"testing"
	"time"

	"github.com/verte-zerg/studytime/internal/timecalc"
)

func TestWholeMinutes(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 1},
		{-5 * time.Second, 1},
		{time.Millisecond, 1},
		{29 * time.Second, 1},
		{89_999 * time.Millisecond, 1},
		{90 * time.Second, 2},
		{150 * time.Second, 3},
		{25 * time.Minute, 25},
		{2*time.Hour + 29*time.Second, 120},
	}
	for _, tt := range tests {
		got := timecalc.WholeMinutes(tt.elapsed)
		if got != tt.want {
			t.Errorf("WholeMinutes(%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0min"},
		{45, "45min"},
		{60, "1h"},
		{90, "1h 30min"},
		{125, "2h 5min"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.minutes)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{61 * time.Second, "01:01"},
		{3661 * time.Second, "1:01:01"},
		{1500 * time.Millisecond, "00:01"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		got := timecalc.FormatClock(tt.d)
		if got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestStartOfWeek(t *testing.T) {
	// 2026-10-18 is a Sunday; its week starts Monday 2026-10-12.
	sun := time.Date(2026, 10, 18, 22, 0, 0, 0, time.UTC)
	want := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	if got := timecalc.StartOfWeek(sun); !got.Equal(want) {
		t.Errorf("StartOfWeek(sunday) = %v, want %v", got, want)
	}
	mon := time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)
	if got := timecalc.StartOfWeek(mon); !got.Equal(want) {
		t.Errorf("StartOfWeek(monday) = %v, want %v", got, want)
	}
}

func TestMonthHelpers(t *testing.T) {
	feb := time.Date(2028, 2, 14, 10, 0, 0, 0, time.UTC)
	if got := timecalc.DaysInMonth(feb); got != 29 {
		t.Errorf("DaysInMonth(leap feb) = %d, want 29", got)
	}
	want := time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC)
	if got := timecalc.StartOfMonth(feb); !got.Equal(want) {
		t.Errorf("StartOfMonth = %v, want %v", got, want)
	}
}
