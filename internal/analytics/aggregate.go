// Package analytics folds historical attempt records into the derived view
// the dashboard renders: summary metrics, an endpoint trend, histogram
// buckets and qualitative bands. Aggregation is pure and recomputed from
// scratch on every call; it holds no state of its own.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"study-pulse/internal/domain"
)

// Window is a relative time filter over attempt history.
type Window string

const (
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"
	WindowAll Window = "all"
)

// ParseWindow maps a query value onto a Window, defaulting to all time.
func ParseWindow(s string) Window {
	switch Window(s) {
	case Window7d, Window30d, Window90d:
		return Window(s)
	default:
		return WindowAll
	}
}

func (w Window) days() float64 {
	switch w {
	case Window7d:
		return 7
	case Window30d:
		return 30
	case Window90d:
		return 90
	default:
		return math.Inf(1)
	}
}

// Filter scopes an aggregation to one course and/or time window.
// An empty Course matches every title.
type Filter struct {
	Course string
	Window Window
}

// Bucket is one 10-point histogram bar. Start is the inclusive lower bound
// of the range the label describes.
type Bucket struct {
	Range string `json:"range"`
	Start int    `json:"start"`
	Count int    `json:"count"`
}

// Band is one qualitative score band with its attempt count.
type Band struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// View is the derived analytics result. It is never persisted.
type View struct {
	Records      []domain.AttemptRecord `json:"records"`
	Count        int                    `json:"count"`
	Average      int                    `json:"average"`
	Max          int                    `json:"max"`
	Trend        int                    `json:"trend"`
	Histogram    []Bucket               `json:"histogram"`
	Distribution []Band                 `json:"distribution"`
}

// Aggregate runs the analytics pipeline over the history in strict order:
// course filter, window filter, metrics, trend, histogram, distribution.
// The reference now is captured once by the caller so every stage of one
// computation sees the same clock.
func Aggregate(history []domain.AttemptRecord, filter Filter, now time.Time) View {
	filtered := history
	if filter.Course != "" {
		filtered = lo.Filter(filtered, func(r domain.AttemptRecord, _ int) bool {
			return r.Title == filter.Course
		})
	}

	maxDays := filter.Window.days()
	filtered = lo.Filter(filtered, func(r domain.AttemptRecord, _ int) bool {
		daysDiff := now.Sub(r.CreatedAt).Hours() / 24
		return daysDiff <= maxDays
	})

	// Trend is defined over ascending attempt time regardless of how the
	// caller ordered the input.
	records := make([]domain.AttemptRecord, len(filtered))
	copy(records, filtered)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	view := View{
		Records:      records,
		Count:        len(records),
		Histogram:    histogram(records),
		Distribution: distribution(records),
	}
	if view.Count == 0 {
		return view
	}

	sum := 0
	for _, r := range records {
		sum += r.Score
		if r.Score > view.Max {
			view.Max = r.Score
		}
	}
	view.Average = int(math.Round(float64(sum) / float64(view.Count)))

	if view.Count >= 2 {
		view.Trend = records[view.Count-1].Score - records[0].Score
	}
	return view
}

// histogram groups scores into 10-point buckets. Scores are capped at 100
// first and 100 folds into the 90-100% bucket instead of opening a
// 100-109% one. Empty buckets are omitted; output is ascending by start.
func histogram(records []domain.AttemptRecord) []Bucket {
	counts := make(map[int]int)
	for _, r := range records {
		capped := r.Score
		if capped > 100 {
			capped = 100
		}
		start := capped / 10 * 10
		if start == 100 {
			start = 90
		}
		counts[start]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for start, count := range counts {
		label := fmt.Sprintf("%d-%d%%", start, start+9)
		if start == 90 {
			label = "90-100%"
		}
		buckets = append(buckets, Bucket{Range: label, Start: start, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start < buckets[j].Start })
	return buckets
}

// distribution counts attempts into the four fixed qualitative bands,
// omitting bands with no attempts.
func distribution(records []domain.AttemptRecord) []Band {
	bands := []Band{
		{Name: "Excellent (90-100%)"},
		{Name: "Good (80-89%)"},
		{Name: "Fair (70-79%)"},
		{Name: "Needs Work (<70%)"},
	}
	for _, r := range records {
		switch {
		case r.Score >= 90:
			bands[0].Count++
		case r.Score >= 80:
			bands[1].Count++
		case r.Score >= 70:
			bands[2].Count++
		default:
			bands[3].Count++
		}
	}
	return lo.Filter(bands, func(b Band, _ int) bool { return b.Count > 0 })
}
