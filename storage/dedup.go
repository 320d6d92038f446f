package storage

import (
	"strings"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
)

// DefaultDedupKeys identifies a post; platform is fixed for the whole
// dataset, so post_id alone is the identity.
var DefaultDedupKeys = []string{"post_id"}

// DedupStats reports what Deduplicate did, for callers that log or assert.
type DedupStats struct {
	Original   int
	Unique     int
	Duplicates int
	Invalid    int
}

// Deduplicate collapses the rows to one per unique key combination, keeping
// the first occurrence in input order. Callers control precedence by how they
// order the input (existing rows first means existing rows win). Key columns
// that do not exist resolve to empty values rather than failing; rows whose
// every key value is empty are unusable and are dropped.
func Deduplicate(posts []models.Post, keys []string) ([]models.Post, DedupStats) {
	if len(keys) == 0 {
		keys = DefaultDedupKeys
	}
	stats := DedupStats{Original: len(posts)}
	if len(posts) == 0 {
		return posts, stats
	}

	seen := make(map[string]bool, len(posts))
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		key, usable := dedupKey(p, keys)
		if !usable {
			stats.Invalid++
			continue
		}
		if seen[key] {
			stats.Duplicates++
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	stats.Unique = len(out)
	return out, stats
}

// Merge combines a new normalized batch with the existing dataset. Existing
// rows are ordered first so a re-scraped duplicate never displaces a row that
// may already carry enrichment. The merge is purely in memory; persisting the
// result is the caller's job via Store.Save.
func Merge(newBatch, existing []models.Post, keys []string) ([]models.Post, DedupStats) {
	if len(newBatch) == 0 {
		return existing, DedupStats{Original: len(existing), Unique: len(existing)}
	}
	if len(existing) == 0 {
		return Deduplicate(newBatch, keys)
	}
	combined := make([]models.Post, 0, len(existing)+len(newBatch))
	combined = append(combined, existing...)
	combined = append(combined, newBatch...)
	return Deduplicate(combined, keys)
}

// NewPostIDs returns the ids present in the new batch but absent from the
// existing dataset. This set difference is the sole trigger for labeling.
func NewPostIDs(newBatch, existing []models.Post) map[string]bool {
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		if p.PostID != "" {
			known[p.PostID] = true
		}
	}
	fresh := make(map[string]bool)
	for _, p := range newBatch {
		if p.PostID != "" && !known[p.PostID] {
			fresh[p.PostID] = true
		}
	}
	return fresh
}

const keySep = "\x1f"

func dedupKey(p models.Post, keys []string) (string, bool) {
	parts := make([]string, len(keys))
	usable := false
	for i, name := range keys {
		parts[i] = columnValue(p, name)
		if parts[i] != "" {
			usable = true
		}
	}
	return strings.Join(parts, keySep), usable
}

// columnValue resolves a dedup key column by its on-disk name. Unknown
// columns resolve to empty, mirroring the self-healing missing-column rule.
func columnValue(p models.Post, column string) string {
	switch column {
	case "post_id":
		return p.PostID
	case "platform":
		return p.Platform
	case "brand":
		return p.Brand
	case "created_date":
		return p.CreatedDate
	case "content":
		return p.Content
	case "source_url":
		return p.SourceURL
	default:
		return ""
	}
}
