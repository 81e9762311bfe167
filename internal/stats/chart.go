package stats

import (
	"strconv"
	"time"

	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/timecalc"
)

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Chart builds one point per bar for view. Sessions whose subject is not in
// subjects are left out. An unknown view falls back to weekly.
func Chart(sessions []model.Session, subjects []model.Subject, view model.ChartView, now time.Time) []model.ChartPoint {
	known := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		known[s.ID] = true
	}
	kept := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if known[s.SubjectID] {
			kept = append(kept, s)
		}
	}

	switch view {
	case model.ChartDaily:
		return dailyChart(kept, now)
	case model.ChartMonthly:
		return monthlyChart(kept, now)
	default:
		return weeklyChart(kept, now)
	}
}

func dailyChart(sessions []model.Session, now time.Time) []model.ChartPoint {
	first := model.DateOf(timecalc.StartOfMonth(now))
	n := timecalc.DaysInMonth(now)
	points := make([]model.ChartPoint, n)
	index := make(map[model.Date]int, n)
	for i := 0; i < n; i++ {
		points[i] = newPoint(strconv.Itoa(i + 1))
		index[first.AddDays(i)] = i
	}
	for _, s := range sessions {
		if i, ok := index[s.Date]; ok {
			addTo(&points[i], s)
		}
	}
	return points
}

func weeklyChart(sessions []model.Session, now time.Time) []model.ChartPoint {
	monday := model.DateOf(timecalc.StartOfWeek(now))
	points := make([]model.ChartPoint, len(weekdayLabels))
	index := make(map[model.Date]int, len(weekdayLabels))
	for i, label := range weekdayLabels {
		points[i] = newPoint(label)
		index[monday.AddDays(i)] = i
	}
	for _, s := range sessions {
		if i, ok := index[s.Date]; ok {
			addTo(&points[i], s)
		}
	}
	return points
}

// monthlyChart covers January to December of now's year. Months before the
// first recorded session, or after the current month, are marked Empty.
func monthlyChart(sessions []model.Session, now time.Time) []model.ChartPoint {
	year := strconv.Itoa(now.Year())
	current := now.Format("2006-01")
	var earliest string
	for _, s := range sessions {
		if len(s.Date) < 7 {
			continue
		}
		if m := string(s.Date[:7]); earliest == "" || m < earliest {
			earliest = m
		}
	}

	points := make([]model.ChartPoint, 12)
	for i := range points {
		month := time.Month(i + 1)
		points[i] = newPoint(month.String()[:3])
		key := year + "-" + twoDigits(i+1)
		points[i].Empty = earliest == "" || key < earliest || key > current
	}
	for _, s := range sessions {
		if len(s.Date) < 7 || string(s.Date[:4]) != year {
			continue
		}
		m, err := strconv.Atoi(string(s.Date[5:7]))
		if err != nil || m < 1 || m > 12 {
			continue
		}
		addTo(&points[m-1], s)
	}
	return points
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func newPoint(label string) model.ChartPoint {
	return model.ChartPoint{Label: label, BySub: map[string]int{}}
}

func addTo(p *model.ChartPoint, s model.Session) {
	p.Total += s.Duration
	p.BySub[s.SubjectID] += s.Duration
}
