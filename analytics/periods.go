package analytics

import (
	"time"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/transform"
)

// Window is an inclusive date range, compared at day granularity.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Periods holds the three comparison windows derived from one end date.
// Current and Previous are adjacent non-overlapping 7-day weeks; Full is
// their 14-day union.
type Periods struct {
	Full     Window `json:"full"`
	Current  Window `json:"current"`
	Previous Window `json:"previous"`
}

// WindowsEnding computes the comparison windows for the 7 days ending at end
// (inclusive) and the 7 days immediately before them.
func WindowsEnding(end time.Time) Periods {
	end = dateOnly(end)
	currentStart := end.AddDate(0, 0, -6)
	prevEnd := currentStart.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -6)
	return Periods{
		Full:     Window{Start: prevStart, End: end},
		Current:  Window{Start: currentStart, End: end},
		Previous: Window{Start: prevStart, End: prevEnd},
	}
}

// Contains reports whether the post date falls inside the window, comparing
// dates only.
func (w Window) Contains(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// FilterWindow returns the rows whose created_date falls inside the window.
// Rows without a parsable date belong to no window.
func FilterWindow(posts []models.Post, w Window) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if t, ok := transform.ParseDate(p.CreatedDate); ok && w.Contains(t) {
			out = append(out, p)
		}
	}
	return out
}

// PctChange implements the three-way comparison rule: a real percentage when
// there is a previous baseline, exactly 100 when something appeared from
// nothing, and 0 when both periods are empty.
func PctChange(previous, current float64) float64 {
	switch {
	case previous > 0:
		return (current - previous) / previous * 100
	case current > 0:
		return 100
	default:
		return 0
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
