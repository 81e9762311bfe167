// Package stats derives study totals and chart series from sessions and
// renders them as terminal text.
package stats

import (
	"time"

	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/timecalc"
)

// Compute totals today, this week (from Monday) and this month, and counts
// the run of consecutive study days ending today. Calendar days are taken in
// now's location.
func Compute(sessions []model.Session, now time.Time) model.Stats {
	today := model.DateOf(now)
	weekStart := model.DateOf(timecalc.StartOfWeek(now))
	monthStart := model.DateOf(timecalc.StartOfMonth(now))

	var out model.Stats
	days := make(map[model.Date]bool, len(sessions))
	for _, s := range sessions {
		days[s.Date] = true
		if s.Date == today {
			out.Today += s.Duration
		}
		if s.Date >= weekStart {
			out.ThisWeek += s.Duration
		}
		if s.Date >= monthStart {
			out.ThisMonth += s.Duration
		}
	}
	out.Streak = streak(days, today)
	return out
}

// streak counts consecutive days with a session walking back from today.
// A day without study today means no streak.
func streak(days map[model.Date]bool, today model.Date) int {
	n := 0
	for d := today; days[d]; d = d.AddDays(-1) {
		n++
	}
	return n
}
