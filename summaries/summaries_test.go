package summaries

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
)

func TestBuildPrompt(t *testing.T) {
	current := []models.Post{
		{PostID: "a", Brand: "OZAS", Likes: 10, TotalEngagement: 10,
			Content: "Weekend concert at the mall", Cluster1: "Events and Experiences"},
	}
	previous := []models.Post{
		{PostID: "b", Brand: "OZAS", Likes: 5, TotalEngagement: 5, Content: "Old post"},
	}

	prompt := buildPrompt("OZAS", current, previous)
	assert.Contains(t, prompt, "Brand: OZAS")
	assert.Contains(t, prompt, "Current week: 1 posts, 10 likes")
	assert.Contains(t, prompt, "Previous week: 1 posts, 5 likes")
	assert.Contains(t, prompt, "Engagement change: +100.0%")
	assert.Contains(t, prompt, "Events and Experiences (1)")
	assert.Contains(t, prompt, "Weekend concert at the mall")
}

func TestBrandPosts(t *testing.T) {
	posts := []models.Post{
		{PostID: "a", Brand: "OZAS"},
		{PostID: "b", Brand: "PANORAMA"},
	}

	assert.Len(t, brandPosts(posts, "OZAS"), 1)
	assert.Empty(t, brandPosts(posts, "CUP"))
}

func TestSortedBrands(t *testing.T) {
	m := map[string]string{"PANORAMA": "x", "AKROPOLIS | Vilnius": "y", "OZAS": "z"}
	assert.Equal(t, []string{"AKROPOLIS | Vilnius", "OZAS", "PANORAMA"}, sortedBrands(m))
}
