package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/analytics"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
)

func TestWindowsEnding(t *testing.T) {
	end := time.Date(2025, 10, 7, 16, 45, 0, 0, time.UTC)
	p := analytics.WindowsEnding(end)

	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), p.Current.Start)
	assert.Equal(t, time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC), p.Current.End)
	assert.Equal(t, time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC), p.Previous.Start)
	assert.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), p.Previous.End)
	assert.Equal(t, p.Previous.Start, p.Full.Start)
	assert.Equal(t, p.Current.End, p.Full.End)

	// adjacent and non-overlapping
	assert.Equal(t, p.Previous.End.AddDate(0, 0, 1), p.Current.Start)
}

func TestWindowContains(t *testing.T) {
	w := analytics.Window{
		Start: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2025, 10, 7, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 9, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC)))
}

func TestFilterWindowDropsUndated(t *testing.T) {
	w := analytics.Window{
		Start: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC),
	}
	posts := []models.Post{
		{PostID: "in", CreatedDate: "2025-10-03 12:00:00"},
		{PostID: "out", CreatedDate: "2025-09-01 12:00:00"},
		{PostID: "undated", CreatedDate: ""},
		{PostID: "garbage", CreatedDate: "not a date"},
	}

	got := analytics.FilterWindow(posts, w)
	assert.Len(t, got, 1)
	assert.Equal(t, "in", got[0].PostID)
}

func TestPctChange(t *testing.T) {
	assert.Equal(t, -50.0, analytics.PctChange(10, 5))
	assert.Equal(t, 100.0, analytics.PctChange(5, 10))
	assert.Equal(t, 100.0, analytics.PctChange(0, 5))
	assert.Equal(t, 0.0, analytics.PctChange(0, 0))
	assert.Equal(t, -100.0, analytics.PctChange(5, 0))
}

func TestWindowStatsForCountsDistinctPosts(t *testing.T) {
	posts := []models.Post{
		{PostID: "a", Brand: "PANORAMA", Likes: 10, TotalEngagement: 10},
		{PostID: "a", Brand: "PANORAMA", Likes: 10, TotalEngagement: 10},
		{PostID: "b", Brand: "OZAS", Comments: 2, TotalEngagement: 6},
	}

	all := analytics.WindowStatsFor(posts, nil)
	assert.Equal(t, 2, all.Posts)
	assert.Equal(t, int64(20), all.Likes)
	assert.Equal(t, int64(26), all.TotalEngagement)

	panorama := analytics.WindowStatsFor(posts, []string{"PANORAMA"})
	assert.Equal(t, 1, panorama.Posts)
	assert.Equal(t, int64(20), panorama.Likes)

	none := analytics.WindowStatsFor(posts, []string{"AKROPOLIS | Vilnius"})
	assert.Equal(t, analytics.WindowStats{}, none)
}

func TestCompare(t *testing.T) {
	current := []models.Post{{PostID: "a", Brand: "OZAS", Likes: 10, TotalEngagement: 10}}
	previous := []models.Post{{PostID: "b", Brand: "OZAS", Likes: 5, TotalEngagement: 5}}

	c := analytics.Compare(current, previous, []string{"OZAS"})
	assert.Equal(t, 1, c.Current.Posts)
	assert.Equal(t, 1, c.Previous.Posts)
	assert.Equal(t, 100.0, c.Change.Likes)
	assert.Equal(t, 0.0, c.Change.Posts)
	assert.Equal(t, 100.0, c.Change.TotalEngagement)
}

func TestTopPosts(t *testing.T) {
	posts := []models.Post{
		{PostID: "low", TotalEngagement: 1},
		{PostID: "b", TotalEngagement: 7},
		{PostID: "a", TotalEngagement: 7},
		{PostID: "high", TotalEngagement: 50},
	}

	top := analytics.TopPosts(posts, 3)
	assert.Len(t, top, 3)
	assert.Equal(t, "high", top[0].PostID)
	// equal engagement resolves by post_id for a stable order
	assert.Equal(t, "a", top[1].PostID)
	assert.Equal(t, "b", top[2].PostID)

	// input order untouched
	assert.Equal(t, "low", posts[0].PostID)
}

func TestClusterCounts(t *testing.T) {
	posts := []models.Post{
		{Cluster1: "Events and Experiences", Cluster2: "Food and Dining Specials"},
		{Cluster1: "Events and Experiences", Cluster2: "NONE", Cluster3: ""},
		{Cluster1: "NONE"},
	}

	counts := analytics.ClusterCounts(posts)
	assert.Equal(t, []analytics.ClusterCount{
		{Cluster: "Events and Experiences", Count: 2},
		{Cluster: "Food and Dining Specials", Count: 1},
	}, counts)
}
