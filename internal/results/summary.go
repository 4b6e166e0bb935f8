// Package results derives everything the results view displays from an
// analysis result: category shares, bar widths and formatted values.
package results

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/suricata-ml/dashboard/internal/models"
	"github.com/suricata-ml/dashboard/internal/palette"
)

// Summary is the render model of the results view.
type Summary struct {
	TotalProcessed int
	AvgProbability float64
	Categories     []CategoryShare
	Entries        []EntryRow
}

// AvgProbabilityLabel formats the average score to four decimals.
func (s *Summary) AvgProbabilityLabel() string {
	return FormatProbability(s.AvgProbability)
}

// CategoryShare is one row of the classification distribution.
type CategoryShare struct {
	Label   string
	Count   int
	Percent float64
	Color   string
}

// PercentLabel is the share with one decimal, e.g. "17.9".
func (c CategoryShare) PercentLabel() string {
	return strconv.FormatFloat(c.Percent, 'f', 1, 64)
}

// BarWidth is the CSS width of the distribution bar.
func (c CategoryShare) BarWidth() string {
	return cssPercent(c.Percent)
}

// EntryRow is one row of the recent entries table.
type EntryRow struct {
	Timestamp   string
	LocalTime   string
	SrcIP       string
	DestIP      string
	Prediction  string
	Probability float64
	Color       string
}

// ProbabilityLabel formats the confidence score to four decimals.
func (e EntryRow) ProbabilityLabel() string {
	return FormatProbability(e.Probability)
}

// BarWidth is the CSS width of the confidence bar.
func (e EntryRow) BarWidth() string {
	return cssPercent(e.Probability * 100)
}

// Percentage returns count as a share of total in percent. A zero total yields 0.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// FormatProbability formats a score in [0,1] to four decimals.
func FormatProbability(p float64) string {
	return strconv.FormatFloat(p, 'f', 4, 64)
}

// cssPercent renders a percentage for a CSS width, to at most four decimals.
func cssPercent(p float64) string {
	return strconv.FormatFloat(math.Round(p*1e4)/1e4, 'f', -1, 64) + "%"
}

// Build derives the results view from result. Categories are ordered by
// descending count, then label; entries keep the backend order.
func Build(result *models.AnalysisResult, pal *palette.Palette, loc *time.Location) *Summary {
	if pal == nil {
		pal = palette.Default()
	}

	s := &Summary{
		TotalProcessed: result.TotalProcessed,
		AvgProbability: result.AvgProbability,
		Categories:     make([]CategoryShare, 0, len(result.ClassCounts)),
		Entries:        make([]EntryRow, 0, len(result.RecentEntries)),
	}

	for label, count := range result.ClassCounts {
		s.Categories = append(s.Categories, CategoryShare{
			Label:   label,
			Count:   count,
			Percent: Percentage(count, result.TotalProcessed),
			Color:   pal.Color(label),
		})
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		a, b := s.Categories[i], s.Categories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Label < b.Label
	})

	for _, e := range result.RecentEntries {
		s.Entries = append(s.Entries, EntryRow{
			Timestamp:   e.Timestamp,
			LocalTime:   FormatTimestamp(e.Timestamp, loc),
			SrcIP:       e.SrcIP,
			DestIP:      e.DestIP,
			Prediction:  e.Prediction,
			Probability: e.Probability,
			Color:       pal.Color(e.Prediction),
		})
	}

	return s
}

// timestampLayouts covers RFC 3339, Suricata's "+0000" offsets and zoneless
// times, which are read in the display location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
}

// displayLayout mirrors the browser's en-US locale string.
const displayLayout = "1/2/2006, 3:04:05 PM"

// FormatTimestamp renders an ISO-8601 timestamp in loc. Unparseable input is
// returned unchanged.
func FormatTimestamp(ts string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, ts, loc); err == nil {
			return t.In(loc).Format(displayLayout)
		}
	}
	return ts
}

// FormatSize renders a file size the way the upload panel shows it.
func FormatSize(f *models.FileInfo) string {
	return fmt.Sprintf("%.2f KB", f.SizeKB())
}
