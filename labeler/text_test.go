package labeler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/labeler"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "one two\nthree", labeler.NormalizeText("  one \t two\r\n\n\nthree  "))
	assert.Equal(t, "", labeler.NormalizeText("   \n \t "))
}

func TestCompactTextTruncates(t *testing.T) {
	long := strings.Repeat("ą", labeler.MaxCharsPerPost+50)

	got := labeler.CompactText(long)
	rs := []rune(got)
	assert.Len(t, rs, labeler.MaxCharsPerPost+1)
	assert.Equal(t, '…', rs[len(rs)-1])

	short := "short post"
	assert.Equal(t, short, labeler.CompactText(short))
}

func TestHashTextStable(t *testing.T) {
	a := labeler.HashText("same content")
	b := labeler.HashText("same content")
	c := labeler.HashText("other content")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestParseLabelLine(t *testing.T) {
	c1, c2, c3 := labeler.ParseLabelLine("Labels: Events and Experiences; Food and Dining Specials")
	assert.Equal(t, "Events and Experiences", c1)
	assert.Equal(t, "Food and Dining Specials", c2)
	assert.Equal(t, "", c3)

	c1, c2, c3 = labeler.ParseLabelLine("labels:OTHER")
	assert.Equal(t, "OTHER", c1)
	assert.Empty(t, c2)
	assert.Empty(t, c3)

	c1, c2, c3 = labeler.ParseLabelLine("Labels: A; B; C; D")
	assert.Equal(t, "A", c1)
	assert.Equal(t, "B", c2)
	assert.Equal(t, "C", c3)

	c1, _, _ = labeler.ParseLabelLine("no label line here")
	assert.Empty(t, c1)
}

func TestTrimSummary(t *testing.T) {
	assert.Equal(t, "Sale at the mall.",
		labeler.TrimSummary("Sale at the  mall. https://example.com/x"))

	long := strings.Repeat("word ", 60)
	trimmed := labeler.TrimSummary(long)
	assert.LessOrEqual(t, len([]rune(trimmed)), 161)
	assert.True(t, strings.HasSuffix(trimmed, "."))
}
