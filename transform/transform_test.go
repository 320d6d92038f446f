package transform_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/transform"
)

func TestFlatten(t *testing.T) {
	record := map[string]any{
		"id": "123",
		"snapshot": map[string]any{
			"likes": map[string]any{"count": float64(10)},
			"tags":  []any{"a", "b"},
		},
	}

	flat := transform.Flatten(record)
	assert.Equal(t, "123", flat["id"])
	assert.Equal(t, float64(10), flat["snapshot/likes/count"])
	// arrays stay leaves
	assert.Equal(t, []any{"a", "b"}, flat["snapshot/tags"])
}

func TestNormalizeResolvesAliases(t *testing.T) {
	records := []map[string]any{
		{
			"id":           "fb_1",
			"message":      "Big   sale\n\n\nthis weekend",
			"page_name":    "PANORAMA",
			"likes":        float64(10),
			"num_comments": float64(2),
			"num_shares":   float64(1),
			"date_posted":  "2025-10-05T12:30:00.000Z",
			"url":          "https://facebook.com/panorama.lt/posts/1",
		},
	}

	posts, err := transform.Normalize(records, "facebook")
	assert.NoError(t, err)
	assert.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, "fb_1", p.PostID)
	assert.Equal(t, "facebook", p.Platform)
	assert.Equal(t, "PANORAMA", p.Brand)
	assert.Equal(t, "Big sale\nthis weekend", p.Content)
	assert.Equal(t, "2025-10-05 12:30:00", p.CreatedDate)
	assert.Equal(t, int64(10), p.Likes)
	assert.Equal(t, int64(2), p.Comments)
	assert.Equal(t, int64(1), p.Shares)
	assert.Equal(t, int64(10+2*3+1*5), p.TotalEngagement)
}

func TestNormalizeBrandFallsBackToURL(t *testing.T) {
	records := []map[string]any{
		{"id": "1", "url": "https://www.facebook.com/akropolis.vilnius/posts/9"},
		{"id": "2"},
	}

	posts, err := transform.Normalize(records, "facebook")
	assert.NoError(t, err)
	assert.Equal(t, "Akropolis Vilnius", posts[0].Brand)
	assert.Equal(t, "Unknown", posts[1].Brand)
}

func TestNormalizeSkipsNilRecords(t *testing.T) {
	posts, err := transform.Normalize([]map[string]any{nil, {"id": "1"}}, "facebook")
	assert.NoError(t, err)
	assert.Len(t, posts, 1)

	_, err = transform.Normalize(nil, "facebook")
	assert.Error(t, err)
}

func TestNormalizeCoercesGarbageCounters(t *testing.T) {
	records := []map[string]any{
		{"id": "1", "likes": "12", "comments": "oops", "shares": float64(-3)},
	}

	posts, err := transform.Normalize(records, "facebook")
	assert.NoError(t, err)
	assert.Equal(t, int64(12), posts[0].Likes)
	assert.Equal(t, int64(0), posts[0].Comments)
	assert.Equal(t, int64(0), posts[0].Shares)
}

func TestNormalizeNumericIDKeepsIntegerForm(t *testing.T) {
	posts, err := transform.Normalize([]map[string]any{{"id": float64(1234567890)}}, "facebook")
	assert.NoError(t, err)
	assert.Equal(t, "1234567890", posts[0].PostID)
}

func TestEngagementScore(t *testing.T) {
	assert.Equal(t, int64(21), transform.EngagementScore(10, 2, 1))
	assert.Equal(t, int64(0), transform.EngagementScore(0, 0, 0))
}

func TestEngagementRate(t *testing.T) {
	assert.Equal(t, 2.5, transform.EngagementRate(25, 1000))
	assert.Equal(t, 33.33, transform.EngagementRate(100, 300))
	assert.Equal(t, 0.0, transform.EngagementRate(50, 0))
	assert.Equal(t, 0.0, transform.EngagementRate(50, -1))
}

func TestComputeEngagementIsIdempotent(t *testing.T) {
	posts, err := transform.Normalize([]map[string]any{
		{"id": "1", "likes": float64(4), "comments": float64(1), "shares": float64(2)},
	}, "facebook")
	assert.NoError(t, err)

	posts = transform.ComputeEngagement(posts)
	posts = transform.ComputeEngagement(posts)
	assert.Equal(t, int64(4+3+10), posts[0].TotalEngagement)
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{
		"2025-10-05T12:30:00Z",
		"2025-10-05 12:30:00",
		"2025-10-05",
		"10-05-2025",
	} {
		parsed, ok := transform.ParseDate(s)
		assert.True(t, ok, s)
		assert.Equal(t, time.October, parsed.Month())
	}

	_, ok := transform.ParseDate("next tuesday")
	assert.False(t, ok)
	_, ok = transform.ParseDate("")
	assert.False(t, ok)
}

func TestFilterRecent(t *testing.T) {
	now := time.Date(2025, 10, 7, 15, 0, 0, 0, time.UTC)
	posts, err := transform.Normalize([]map[string]any{
		{"id": "new", "date_posted": "2025-10-01"},
		{"id": "edge", "date_posted": "2025-09-23"},
		{"id": "old", "date_posted": "2025-09-01"},
		{"id": "undated"},
	}, "facebook")
	assert.NoError(t, err)

	recent := transform.FilterRecent(posts, now, 14)
	assert.Len(t, recent, 2)
	assert.Equal(t, "new", recent[0].PostID)
	assert.Equal(t, "edge", recent[1].PostID)
}

func TestExtractBrandFromURL(t *testing.T) {
	assert.Equal(t, "Akropolis Vilnius", transform.ExtractBrandFromURL("https://facebook.com/akropolis.vilnius"))
	assert.Equal(t, "Ozas", transform.ExtractBrandFromURL("https://www.facebook.com/ozas?ref=page"))
	assert.Equal(t, "Unknown", transform.ExtractBrandFromURL("https://example.com/page"))
	assert.Equal(t, "Unknown", transform.ExtractBrandFromURL(""))
}
