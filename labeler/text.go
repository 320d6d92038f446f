package labeler

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// MaxCharsPerPost bounds how much post text is sent per LLM call.
const MaxCharsPerPost = 1400

var (
	lineRuns  = regexp.MustCompile(`\n+`)
	spaceRuns = regexp.MustCompile(`[ \t]+`)
	urlRun    = regexp.MustCompile(`https?://\S+`)
	labelLine = regexp.MustCompile(`(?i)Labels\s*:\s*(.+)$`)
)

// NormalizeText cleans whitespace and line breaks for prompting and for
// content-identity hashing.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", "\n")
	s = lineRuns.ReplaceAllString(s, "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CompactText normalizes and truncates to the per-post character budget.
func CompactText(s string) string {
	s = NormalizeText(s)
	rs := []rune(s)
	if len(rs) <= MaxCharsPerPost {
		return s
	}
	return string(rs[:MaxCharsPerPost]) + "…"
}

// HashText identifies a post's normalized content so identical texts share
// one LLM call.
func HashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ParseLabelLine extracts up to three labels from a
// "Labels: <Theme A>; <Theme B>; <Theme C>" response line. Anything
// unparsable yields three empty labels.
func ParseLabelLine(text string) (string, string, string) {
	m := labelLine.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", "", ""
	}
	labels := make([]string, 0, 3)
	for _, part := range strings.Split(m[1], ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			labels = append(labels, part)
		}
		if len(labels) == 3 {
			break
		}
	}
	for len(labels) < 3 {
		labels = append(labels, "")
	}
	return labels[0], labels[1], labels[2]
}

// TrimSummary post-processes a model summary: drop URLs, normalize
// whitespace, cap length.
func TrimSummary(s string) string {
	s = urlRun.ReplaceAllString(s, "")
	s = NormalizeText(s)
	rs := []rune(s)
	if len(rs) > 160 {
		s = strings.TrimRight(string(rs[:160]), " ,.;:") + "."
	}
	return s
}
