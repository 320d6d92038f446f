package summaries

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/analytics"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/labeler"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/logger"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
)

const maxSamplePosts = 10

const systemInstruction = `You are a social media analyst writing weekly brand commentary.
Given one brand's posting activity for the current week and the previous week, write 2-3 short factual paragraphs.
Rules:
- Cover what the brand posted about and how engagement developed week over week.
- Mention notable themes or campaigns when the post samples show them.
- Be factual and specific; no hype, no bullet points, no emojis.
- ALWAYS write in English.`

// Generator produces the per-brand weekly commentary from windowed posts.
type Generator struct {
	client     *genai.Client
	model      string
	maxWorkers int
	log        logger.Logger
}

func NewGenerator(ctx context.Context, apiKey, model string, maxWorkers int) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("summaries: missing API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Generator{client: client, model: model, maxWorkers: maxWorkers, log: logger.Log}, nil
}

// GenerateAll writes one summary per brand on a bounded worker pool. A brand
// with no posts in either week gets a fixed no-activity note without a model
// call; a failed call yields an empty summary for that brand only.
func (g *Generator) GenerateAll(ctx context.Context, current, previous []models.Post, brands []string) map[string]string {
	g.log.Infof("generating weekly summaries for %d brands with %d workers", len(brands), g.maxWorkers)

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(brands))
		sem     = make(chan struct{}, g.maxWorkers)
		wg      sync.WaitGroup
	)
	for _, brand := range brands {
		wg.Add(1)
		sem <- struct{}{}
		go func(brand string) {
			defer wg.Done()
			defer func() { <-sem }()

			summary, err := g.Generate(ctx, brand, current, previous)
			if err != nil {
				g.log.Errorf("weekly summary for %s failed: %v", brand, err)
				summary = ""
			}
			mu.Lock()
			results[brand] = summary
			mu.Unlock()
		}(brand)
	}
	wg.Wait()
	return results
}

// Generate builds the prompt for one brand and runs the model call.
func (g *Generator) Generate(ctx context.Context, brand string, current, previous []models.Post) (string, error) {
	curPosts := brandPosts(current, brand)
	prevPosts := brandPosts(previous, brand)
	if len(curPosts) == 0 && len(prevPosts) == 0 {
		return "No posting activity in either week.", nil
	}

	prompt := buildPrompt(brand, curPosts, prevPosts)
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		},
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Text()), nil
}

func buildPrompt(brand string, current, previous []models.Post) string {
	comparison := analytics.Compare(current, previous, nil)

	var b strings.Builder
	fmt.Fprintf(&b, "Brand: %s\n\n", brand)
	fmt.Fprintf(&b, "Current week: %d posts, %d likes, %d comments, %d shares, %d total engagement.\n",
		comparison.Current.Posts, comparison.Current.Likes, comparison.Current.Comments,
		comparison.Current.Shares, comparison.Current.TotalEngagement)
	fmt.Fprintf(&b, "Previous week: %d posts, %d likes, %d comments, %d shares, %d total engagement.\n",
		comparison.Previous.Posts, comparison.Previous.Likes, comparison.Previous.Comments,
		comparison.Previous.Shares, comparison.Previous.TotalEngagement)
	fmt.Fprintf(&b, "Engagement change: %+.1f%%.\n", comparison.Change.TotalEngagement)

	if themes := themeLine(current); themes != "" {
		fmt.Fprintf(&b, "Current week themes: %s.\n", themes)
	}

	b.WriteString("\nSample posts from the current week:\n")
	for i, p := range analytics.TopPosts(current, maxSamplePosts) {
		content := labeler.CompactText(p.Content)
		if content == "" && p.PostSummary != "" {
			content = p.PostSummary
		}
		if content == "" {
			continue
		}
		fmt.Fprintf(&b, "%d. (%d engagement) %s\n", i+1, p.TotalEngagement, content)
	}
	return b.String()
}

func themeLine(posts []models.Post) string {
	counts := analytics.ClusterCounts(posts)
	if len(counts) > 5 {
		counts = counts[:5]
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s (%d)", c.Cluster, c.Count))
	}
	return strings.Join(parts, ", ")
}

func brandPosts(posts []models.Post, brand string) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Brand == brand {
			out = append(out, p)
		}
	}
	return out
}

// sortedBrands is used by callers that want deterministic column order when
// brands come from a map.
func sortedBrands(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for b := range m {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
