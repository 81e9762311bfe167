package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/timecalc"
)

const (
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	minBarWidth         = 10
	maxNotesWidth       = 40
	simpleFill          = "█"
	simpleColor         = "\x1b[36m"
)

// stackFills tell subjects apart when color is off.
var stackFills = []string{"█", "▓", "▒", "░", "#", "*", "+", "="}

// ChartOptions controls RenderChart.
type ChartOptions struct {
	Title string
	Mode  model.BarMode
	Width int  // total columns; zero uses the terminal width
	Color bool // force ANSI color even when w is not a terminal
}

// RenderStats prints the four summary cards.
func RenderStats(w io.Writer, st model.Stats) error {
	days := "days"
	if st.Streak == 1 {
		days = "day"
	}
	rows := [][]string{
		{"Today", timecalc.FormatDuration(st.Today)},
		{"This week", timecalc.FormatDuration(st.ThisWeek)},
		{"This month", timecalc.FormatDuration(st.ThisMonth)},
		{"Streak", fmt.Sprintf("%d %s", st.Streak, days)},
	}
	return writeLines(w, formatTable(nil, rows, map[int]bool{1: true}))
}

// RenderChart prints points as horizontal bars measured in hours. In stacked
// mode each bar is split by subject in the order subjects are given.
func RenderChart(w io.Writer, points []model.ChartPoint, subjects []model.Subject, opts ChartOptions) error {
	if len(points) == 0 {
		return nil
	}
	width := opts.Width
	if width <= 0 {
		width = terminalWidth()
	}
	useColor := shouldUseColor(w, opts.Color)
	stacked := opts.Mode != model.BarSimple && len(subjects) > 0

	labelWidth, valueWidth, maxTotal := 0, 0, 0
	values := make([]string, len(points))
	for i, p := range points {
		values[i] = formatHours(p)
		labelWidth = max(labelWidth, displayWidth(p.Label))
		valueWidth = max(valueWidth, displayWidth(values[i]))
		if !p.Empty {
			maxTotal = max(maxTotal, p.Total)
		}
	}
	barWidth := width - labelWidth - displayWidth(axisSeparator) - valueWidth - 1
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	if opts.Title != "" {
		if _, err := fmt.Fprintln(w, opts.Title); err != nil {
			return err
		}
	}
	for i, p := range points {
		var bar string
		var cells int
		if !p.Empty && maxTotal > 0 {
			if stacked {
				bar, cells = stackedBar(p, subjects, maxTotal, barWidth, useColor)
			} else {
				cells = scale(p.Total, maxTotal, barWidth)
				bar = strings.Repeat(simpleFill, cells)
				if useColor && cells > 0 {
					bar = simpleColor + bar + colorReset
				}
			}
		}
		line := padCell(p.Label, labelWidth, false) + axisSeparator + bar +
			strings.Repeat(" ", barWidth-cells) + " " + padCell(values[i], valueWidth, true)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	if stacked {
		if _, err := fmt.Fprintln(w, renderLegend(subjects, useColor)); err != nil {
			return err
		}
	}
	return nil
}

func stackedBar(p model.ChartPoint, subjects []model.Subject, maxTotal, barWidth int, useColor bool) (string, int) {
	var b strings.Builder
	cum, prev := 0, 0
	for i, s := range subjects {
		minutes := p.BySub[s.ID]
		if minutes == 0 {
			continue
		}
		cum += minutes
		end := scale(cum, maxTotal, barWidth)
		if end > prev {
			b.WriteString(segment(i, s.Color, end-prev, useColor))
		}
		prev = end
	}
	return b.String(), prev
}

func segment(idx int, color model.Color, n int, useColor bool) string {
	if useColor {
		return ansiFor(color) + strings.Repeat(simpleFill, n) + colorReset
	}
	return strings.Repeat(stackFills[idx%len(stackFills)], n)
}

func renderLegend(subjects []model.Subject, useColor bool) string {
	parts := make([]string, 0, len(subjects))
	for i, s := range subjects {
		parts = append(parts, segment(i, s.Color, 1, useColor)+" "+s.Name)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func scale(v, maxV, width int) int {
	if maxV <= 0 {
		return 0
	}
	return int(math.Round(float64(v) / float64(maxV) * float64(width)))
}

func formatHours(p model.ChartPoint) string {
	if p.Empty {
		return "-"
	}
	return strconv.FormatFloat(float64(p.Total)/60, 'f', 1, 64) + "h"
}

// ansiFor returns a 24-bit foreground escape for a palette color.
func ansiFor(c model.Color) string {
	hex := strings.TrimPrefix(c.Hex(), "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return simpleColor
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", v>>16&0xff, v>>8&0xff, v&0xff)
}

// RenderSessions prints the session history, newest first.
func RenderSessions(w io.Writer, sessions []model.Session, subjects []model.Subject) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	names := SubjectNames(subjects)
	sorted := NewestFirst(sessions)

	headers := []string{"Date", "Subject", "Duration", "Notes", "ID"}
	rows := make([][]string, 0, len(sorted))
	for _, s := range sorted {
		name, ok := names[s.SubjectID]
		if !ok {
			name = "(deleted)"
		}
		notes := ""
		if s.Notes != nil {
			notes = runewidth.Truncate(strings.ReplaceAll(*s.Notes, "\n", " "), maxNotesWidth, "…")
		}
		rows = append(rows, []string{
			string(s.Date),
			name,
			timecalc.FormatDuration(s.Duration),
			notes,
			s.ID,
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true}))
}

// RenderSubjects prints every subject with its session count and total.
func RenderSubjects(w io.Writer, subjects []model.Subject, sessions []model.Session) error {
	if len(subjects) == 0 {
		_, err := fmt.Fprintln(w, "No subjects yet.")
		return err
	}
	counts := make(map[string]int, len(subjects))
	totals := make(map[string]int, len(subjects))
	for _, s := range sessions {
		counts[s.SubjectID]++
		totals[s.SubjectID] += s.Duration
	}
	headers := []string{"Name", "Color", "Sessions", "Total", "ID"}
	rows := make([][]string, 0, len(subjects))
	for _, s := range subjects {
		rows = append(rows, []string{
			s.Name,
			string(s.Color),
			strconv.Itoa(counts[s.ID]),
			timecalc.FormatDuration(totals[s.ID]),
			s.ID,
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true, 3: true}))
}

// NewestFirst returns a copy of sessions ordered by date, latest first, with
// ties broken by creation time.
func NewestFirst(sessions []model.Session) []model.Session {
	sorted := append([]model.Session(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date == sorted[j].Date {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].Date > sorted[j].Date
	})
	return sorted
}

// SubjectNames maps subject ids to names.
func SubjectNames(subjects []model.Subject) map[string]string {
	out := make(map[string]string, len(subjects))
	for _, s := range subjects {
		out[s.ID] = s.Name
	}
	return out
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
