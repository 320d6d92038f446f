package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
)

// CreatedDateLayout is the single textual form created_date takes in the
// master dataset.
const CreatedDateLayout = "2006-01-02 15:04:05"

// Engagement weights: a share is worth more than a comment, a comment more
// than a like.
const (
	likeWeight    = 1
	commentWeight = 3
	shareWeight   = 5
)

// fieldAliases maps each canonical field to an ordered list of provider field
// candidates; the first candidate present in the flattened record wins.
// Adding a provider means adding aliases here, not code.
var fieldAliases = map[string][]string{
	"post_id":      {"post_id", "id", "snapshot/id"},
	"created_date": {"created_date", "created_time", "snapshot/created_time", "timestamp"},
	"content":      {"content", "message", "snapshot/message", "text", "snapshot/text"},
	"page_name":    {"page_name", "snapshot/page_name", "from/name"},
	"likes":        {"likes", "likes/count", "snapshot/likes/count", "reactions/like"},
	"comments":     {"comments", "comments/count", "snapshot/comments/count", "num_comments"},
	"shares":       {"shares", "shares/count", "snapshot/shares/count", "num_shares"},
	"reach":        {"reach", "snapshot/reach", "impressions"},
	"source_url":   {"source_url", "url", "snapshot/url"},
	"date_posted":  {"date_posted", "snapshot/date_posted"},
}

// dateLayouts are tried in order when parsing provider dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	CreatedDateLayout,
	"2006-01-02",
	"01-02-2006",
}

// Normalize flattens raw provider records and maps them onto the canonical
// Post shape. Individual malformed records never fail the batch: missing
// fields become empty values and unusable counters become zero. Only a nil
// batch is rejected.
func Normalize(records []map[string]any, platform string) ([]models.Post, error) {
	if records == nil {
		return nil, fmt.Errorf("normalize: nil record batch")
	}

	posts := make([]models.Post, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		posts = append(posts, normalizeRecord(Flatten(record), platform))
	}
	return posts, nil
}

func normalizeRecord(flat map[string]any, platform string) models.Post {
	p := models.Post{
		Platform:  platform,
		PostID:    lookupString(flat, "post_id"),
		Content:   CleanContent(lookupString(flat, "content")),
		SourceURL: lookupString(flat, "source_url"),
		Likes:     lookupCount(flat, "likes"),
		Comments:  lookupCount(flat, "comments"),
		Shares:    lookupCount(flat, "shares"),

		PageName:        lookupString(flat, "page_name"),
		UserUsernameRaw: asString(flat["user_username_raw"]),
		DatePosted:      lookupString(flat, "date_posted"),
		NumComments:     asString(flat["num_comments"]),
		NumShares:       asString(flat["num_shares"]),
		ScrapedAt:       asString(flat["scraped_at"]),
	}
	if v, ok := flat["platform"]; ok && asString(v) != "" {
		p.Platform = asString(v)
	}

	// date_posted is the preferred source for created_date; the generic
	// date aliases are the fallback. Unparsable dates stay empty.
	if t, ok := ParseDate(p.DatePosted); ok {
		p.CreatedDate = t.Format(CreatedDateLayout)
	} else if t, ok := ParseDate(lookupString(flat, "created_date")); ok {
		p.CreatedDate = t.Format(CreatedDateLayout)
	}

	// page_name is the source of truth for brand; the URL slug is a last
	// resort for records missing the display name entirely.
	if p.PageName != "" {
		p.Brand = p.PageName
	} else {
		p.Brand = ExtractBrandFromURL(p.SourceURL)
	}

	p.TotalEngagement = EngagementScore(p.Likes, p.Comments, p.Shares)
	p.EngagementRate = EngagementRate(p.TotalEngagement, lookupCount(flat, "reach"))
	return p
}

// ComputeEngagement recomputes total_engagement for every row from its raw
// counters. Safe to run repeatedly: the score is derived, never accumulated.
func ComputeEngagement(posts []models.Post) []models.Post {
	for i := range posts {
		posts[i].TotalEngagement = EngagementScore(posts[i].Likes, posts[i].Comments, posts[i].Shares)
	}
	return posts
}

// EngagementScore is the weighted 1/3/5 engagement value.
func EngagementScore(likes, comments, shares int64) int64 {
	return likes*likeWeight + comments*commentWeight + shares*shareWeight
}

// EngagementRate returns total/reach as a percentage rounded to two decimals.
// Zero or missing reach yields 0, never a division error.
func EngagementRate(total, reach int64) float64 {
	if reach <= 0 {
		return 0
	}
	return math.Round(float64(total)/float64(reach)*100*100) / 100
}

// FilterRecent keeps posts whose created_date falls within the trailing
// daysBack-day window ending at now. Posts without a parsable date are
// dropped: they cannot be placed in any window.
func FilterRecent(posts []models.Post, now time.Time, daysBack int) []models.Post {
	cutoff := dateOnly(now).AddDate(0, 0, -daysBack)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		t, ok := ParseDate(p.CreatedDate)
		if !ok {
			continue
		}
		if !dateOnly(t).Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// ParseDate tries the known provider date layouts in order.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var (
	spaceRuns = regexp.MustCompile(`[ \t]+`)
	lineRuns  = regexp.MustCompile(`\n+`)
)

// CleanContent collapses whitespace runs and blank lines in free text.
func CleanContent(s string) string {
	s = strings.ReplaceAll(s, "\r", "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = lineRuns.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

var facebookSlug = regexp.MustCompile(`facebook\.com/([^/?]+)`)

// ExtractBrandFromURL derives a display name from a page URL when the
// provider record carries no page name at all.
func ExtractBrandFromURL(url string) string {
	if url == "" {
		return "Unknown"
	}
	m := facebookSlug.FindStringSubmatch(url)
	if m == nil {
		return "Unknown"
	}
	slug := m[1]
	for _, punct := range []string{".", "_", "-"} {
		slug = strings.ReplaceAll(slug, punct, " ")
	}
	return strings.Title(slug)
}

func lookupString(flat map[string]any, field string) string {
	for _, alias := range fieldAliases[field] {
		if v, ok := flat[alias]; ok {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func lookupCount(flat map[string]any, field string) int64 {
	for _, alias := range fieldAliases[field] {
		if v, ok := flat[alias]; ok && v != nil {
			return asCount(v)
		}
	}
	return 0
}

// asString renders a JSON leaf value as text. Numbers lose any ".0" suffix so
// numeric ids survive the float round trip of encoding/json.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// asCount coerces a leaf value to a non-negative integer; anything
// unusable becomes 0.
func asCount(v any) int64 {
	var n int64
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		n = int64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		n = int64(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		n = int64(f)
	case int:
		n = int64(t)
	case int64:
		n = t
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
