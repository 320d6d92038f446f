package analytics

import (
	"sort"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
)

// WindowStats are the aggregates for one brand filter inside one window.
type WindowStats struct {
	Posts           int   `json:"posts"`
	Likes           int64 `json:"likes"`
	Comments        int64 `json:"comments"`
	Shares          int64 `json:"shares"`
	TotalEngagement int64 `json:"total_engagement"`
}

// ChangeStats hold the week-over-week percentage change per metric, each
// computed independently by the three-way rule.
type ChangeStats struct {
	Posts           float64 `json:"posts"`
	Likes           float64 `json:"likes"`
	Comments        float64 `json:"comments"`
	Shares          float64 `json:"shares"`
	TotalEngagement float64 `json:"total_engagement"`
}

// Comparison is the full current-vs-previous view for a brand filter.
type Comparison struct {
	Current  WindowStats `json:"current"`
	Previous WindowStats `json:"previous"`
	Change   ChangeStats `json:"change"`
}

// WindowStatsFor aggregates the rows matching the brand filter. Post counts
// are distinct by post_id. An empty filter matches every brand.
func WindowStatsFor(posts []models.Post, brands []string) WindowStats {
	match := brandSet(brands)
	var stats WindowStats
	seen := map[string]bool{}
	for _, p := range posts {
		if match != nil && !match[p.Brand] {
			continue
		}
		if p.PostID != "" && !seen[p.PostID] {
			seen[p.PostID] = true
			stats.Posts++
		}
		stats.Likes += p.Likes
		stats.Comments += p.Comments
		stats.Shares += p.Shares
		stats.TotalEngagement += p.TotalEngagement
	}
	return stats
}

// Compare builds the week-over-week comparison for a brand filter from the
// already-windowed current and previous row sets.
func Compare(current, previous []models.Post, brands []string) Comparison {
	cur := WindowStatsFor(current, brands)
	prev := WindowStatsFor(previous, brands)
	return Comparison{
		Current:  cur,
		Previous: prev,
		Change: ChangeStats{
			Posts:           PctChange(float64(prev.Posts), float64(cur.Posts)),
			Likes:           PctChange(float64(prev.Likes), float64(cur.Likes)),
			Comments:        PctChange(float64(prev.Comments), float64(cur.Comments)),
			Shares:          PctChange(float64(prev.Shares), float64(cur.Shares)),
			TotalEngagement: PctChange(float64(prev.TotalEngagement), float64(cur.TotalEngagement)),
		},
	}
}

// TopPosts returns the n rows with the highest total engagement, ties broken
// by post_id for a stable order.
func TopPosts(posts []models.Post, n int) []models.Post {
	sorted := make([]models.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalEngagement != sorted[j].TotalEngagement {
			return sorted[i].TotalEngagement > sorted[j].TotalEngagement
		}
		return sorted[i].PostID < sorted[j].PostID
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ClusterCount is one taxonomy label with its occurrence count across all
// three ranked cluster columns.
type ClusterCount struct {
	Cluster string `json:"cluster"`
	Count   int    `json:"count"`
}

// ClusterCounts tallies labels over cluster_1..3, skipping empties and the
// "NONE" sentinel, sorted by descending count.
func ClusterCounts(posts []models.Post) []ClusterCount {
	counts := map[string]int{}
	for _, p := range posts {
		for _, c := range []string{p.Cluster1, p.Cluster2, p.Cluster3} {
			if c != "" && c != "NONE" {
				counts[c]++
			}
		}
	}
	out := make([]ClusterCount, 0, len(counts))
	for cluster, count := range counts {
		out = append(out, ClusterCount{Cluster: cluster, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Cluster < out[j].Cluster
	})
	return out
}

func brandSet(brands []string) map[string]bool {
	if len(brands) == 0 {
		return nil
	}
	set := make(map[string]bool, len(brands))
	for _, b := range brands {
		set[b] = true
	}
	return set
}
