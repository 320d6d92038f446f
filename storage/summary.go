package storage

import (
	"time"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/transform"
)

// DataSummary aggregates the dataset for status reporting.
type DataSummary struct {
	TotalPosts int            `json:"total_posts"`
	Platforms  map[string]int `json:"platforms"`
	Brands     map[string]int `json:"brands"`
	Earliest   string         `json:"earliest,omitempty"`
	Latest     string         `json:"latest,omitempty"`

	TotalLikes      int64 `json:"total_likes"`
	TotalComments   int64 `json:"total_comments"`
	TotalShares     int64 `json:"total_shares"`
	TotalEngagement int64 `json:"total_engagement"`
}

// Summarize computes counts, date range and engagement totals over the rows.
func Summarize(posts []models.Post) DataSummary {
	sum := DataSummary{
		TotalPosts: len(posts),
		Platforms:  map[string]int{},
		Brands:     map[string]int{},
	}

	var earliest, latest time.Time
	for _, p := range posts {
		if p.Platform != "" {
			sum.Platforms[p.Platform]++
		}
		if p.Brand != "" {
			sum.Brands[p.Brand]++
		}
		sum.TotalLikes += p.Likes
		sum.TotalComments += p.Comments
		sum.TotalShares += p.Shares
		sum.TotalEngagement += p.TotalEngagement

		t, ok := transform.ParseDate(p.CreatedDate)
		if !ok {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
		if latest.IsZero() || t.After(latest) {
			latest = t
		}
	}

	if !earliest.IsZero() {
		sum.Earliest = earliest.Format(dateOnlyLayout)
		sum.Latest = latest.Format(dateOnlyLayout)
	}
	return sum
}

const dateOnlyLayout = "2006-01-02"
