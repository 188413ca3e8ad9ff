package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/jsoj/internal/daily"
	"github.com/verte-zerg/jsoj/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Progress counts problems by record state.
type Progress struct {
	Passed      int
	Attempted   int
	Unattempted int
	Total       int
}

// ProblemProgress classifies each problem as passed, attempted but not
// passed, or never attempted.
func ProblemProgress(problems []model.Problem, records map[string]model.Record) Progress {
	var p Progress
	for _, problem := range problems {
		record := records[problem.ID]
		switch {
		case record.IsPassed:
			p.Passed++
		case record.TotalAttempts > 0:
			p.Attempted++
		default:
			p.Unattempted++
		}
	}
	p.Total = len(problems)
	return p
}

// Percent returns n as a percentage of the total.
func (p Progress) Percent(n int) float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(n) / float64(p.Total) * 100
}

// RecordStatus is the short label of a record.
func RecordStatus(record model.Record) string {
	switch {
	case record.IsPassed:
		return "passed"
	case record.TotalAttempts > 0:
		return "attempted"
	default:
		return "-"
	}
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// ProgressBar draws passed, attempted and unattempted shares in width cells.
func ProgressBar(p Progress, width int) string {
	if width <= 0 || p.Total == 0 {
		return ""
	}
	passed := int(math.Round(float64(width) * float64(p.Passed) / float64(p.Total)))
	attempted := int(math.Round(float64(width) * float64(p.Attempted) / float64(p.Total)))
	if passed+attempted > width {
		attempted = width - passed
	}
	rest := width - passed - attempted
	return strings.Repeat("#", passed) + strings.Repeat("+", attempted) + strings.Repeat(".", rest)
}

// RenderProgress prints the problem progress summary. The bar is colored
// when useColor is set.
func RenderProgress(w io.Writer, p Progress, barWidth int, useColor bool) error {
	if p.Total == 0 {
		_, err := fmt.Fprintln(w, "No problems loaded.")
		return err
	}
	lines := []string{
		"Progress",
		fmt.Sprintf("Passed: %d (%.1f%%)", p.Passed, p.Percent(p.Passed)),
		fmt.Sprintf("Attempted: %d (%.1f%%)", p.Attempted, p.Percent(p.Attempted)),
		fmt.Sprintf("Unattempted: %d (%.1f%%)", p.Unattempted, p.Percent(p.Unattempted)),
		fmt.Sprintf("Total: %d", p.Total),
	}
	bar := ProgressBar(p, barWidth)
	if useColor {
		bar = ColorProgressBar(p, barWidth)
	}
	if bar != "" {
		lines = append(lines, "["+bar+"]")
	}
	return writeLines(w, lines)
}

// RenderToday lists the items of kind attempted today.
func RenderToday(w io.Writer, kind model.Kind, attempts []model.Attempt) error {
	header := fmt.Sprintf("Today (%s): %d attempted", kind.Label(), len(attempts))
	lines := []string{header}
	for _, a := range attempts {
		title := a.Title
		if title == "" {
			title = a.ID
		}
		lines = append(lines, "  - "+title)
	}
	return writeLines(w, lines)
}

// RenderHistory prints per-day attempt counts with a sparkline.
func RenderHistory(w io.Writer, counts []daily.DayCount) error {
	if len(counts) == 0 {
		return nil
	}
	values := make([]float64, len(counts))
	rows := make([][]string, len(counts))
	total := 0
	for i, c := range counts {
		values[i] = float64(c.Count)
		rows[i] = []string{c.Day, fmt.Sprintf("%d", c.Count)}
		total += c.Count
	}
	lines := []string{
		fmt.Sprintf("Last %d days: %d attempts  [%s]", len(counts), total, Sparkline(values)),
	}
	lines = append(lines, formatTable([]string{"Day", "Items"}, rows, map[int]bool{1: true})...)
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
