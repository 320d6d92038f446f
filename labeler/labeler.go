package labeler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/logger"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
)

// Sentinel marks a post whose labeling produced nothing usable; such posts
// can be resubmitted later.
const Sentinel = "NONE"

const summarySystemInstruction = `You are a precise annotator of social media posts.
Given a social media post's content, return a ONE-SENTENCE description of the main message, promotion, or announcement.
Rules:
- If a clear single product/service/promotion/event/announcement is identifiable, describe it succinctly in one sentence.
- If the post is only brand building, company news, or general content with no concrete offer, still summarize the post in one sentence.
- Keep it factual (no hype), <= 140 characters where feasible, no emojis, no hashtags, no URLs.
- Treat promotions/discounts/events/contests as valid 'products' (e.g., '50% off weekend sale at Maxima').
- ALWAYS return everything in English, even if the post is in another language!
Return STRICT JSON ONLY as: {"summary":"<ONE_SENTENCE_OR_NONE>"}`

const clusterSystemInstruction = `You are labeling a social media post against a FIXED taxonomy.
Rules:
- Choose 1 to 3 labels from ALLOWED THEMES (listed below with examples).
- The FIRST label must be the single MOST APPROPRIATE cluster.
- If no cluster fits, output OTHER.
- VERY IMPORTANT: do NOT force-fit; keep OTHER if uncertain.
- Output ENGLISH only in EXACTLY this format:
Labels: <Theme A>; <Theme B>; <Theme C>
(Use 1-3 labels; separate with semicolons; do not number them.)
- Prefer the most specific matching themes.
- Each cluster name below is followed by a dash and examples. RETURN ONLY the cluster name itself, not the examples.

Key distinctions:
- Seasonal Promotions and Discounts = time-bound events tied to a season, holiday, or calendar moment.
- General Discounts and Promotions = price cuts or deals not tied to a season or holiday.

Available clusters:
1. Store Openings and Tenant Updates - new store opening, major renovation, new tenant announcement.
2. Seasonal Promotions and Discounts - Christmas sale, Black Friday offers, Easter weekend deals, summer clearance, back-to-school campaigns.
3. Competitions and Giveaways - social media raffle, prize draw, scholarship contest.
4. Events and Experiences - live concerts, family festivals, community fairs, interactive installations.
5. Fashion and Style Highlights - clothing trends, styling tips, seasonal wardrobe ideas.
6. Food and Dining Specials - restaurant or cafe openings, tasting events, featured recipes, bakery showcases.
7. Beauty and Personal Care - hair salon promotions, skincare demos, cosmetic discounts.
8. Digital or App-Exclusive Offers - mobile-app coupons, e-shop exclusives, online order perks.
9. Holiday and Celebration Greetings - holiday wishes, themed decorations, festive atmosphere posts.
10. Shopping Experience and Atmosphere - free parking, stroller rental, pet-friendly policy, upgraded family rooms, mall gift cards.
11. Travel and Leisure Essentials - luggage sales, vacation prep, travel accessories.
12. Sustainability and Eco-Actions - recycling initiatives, zero-waste fairs, green programs.
13. Services and Repairs - tailoring, electronics service desks, key-cutting, watch repair.
14. Health and Social Responsibility - free health checks, blood drives, charitable or community aid, inclusive social projects.
15. Books, Learning and Educational Products - book fairs, stationery launches, coding kits.
16. Home & Living / Fabric Care Tips - furniture and decor inspiration, fabric-care guidance, interior refresh ideas.
17. Gifting and Accessories - gift ideas, jewelry highlights, special flower or accessory offers.
18. Financial and Business Performance - earnings results, credit ratings, investment plans, large-scale capital projects.
19. Leadership Appointments and HR News - executive hires, leadership promotions, organizational restructuring.
20. Employee Development and Workplace Culture - career growth, internal mobility, employee stories, well-being programs.
21. Awards and Industry Recognition - industry prizes, rankings, certifications, external recognition.
22. Supply Chain and Product Quality - supplier policies, quality-control measures, sourcing standards, logistics achievements.
23. Corporate Partnerships and Sponsorships - strategic alliances, co-branded campaigns, sports or cultural sponsorships.
24. Thought Leadership and Expert Commentary - market insights, opinion pieces, expert interviews, future-of-industry perspectives.`

// Labeler enriches posts with an LLM-generated summary and up to three
// ranked taxonomy labels.
type Labeler struct {
	client     *genai.Client
	model      string
	maxWorkers int
	log        logger.Logger
}

func New(ctx context.Context, apiKey, model string, maxWorkers int) (*Labeler, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("labeler: missing API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Labeler{client: client, model: model, maxWorkers: maxWorkers, log: logger.Log}, nil
}

// LabelPost runs the two model calls for one post's compacted content.
func (l *Labeler) LabelPost(ctx context.Context, content string) (models.LabelResult, error) {
	summary, err := l.generateSummary(ctx, content)
	if err != nil {
		return models.LabelResult{}, err
	}
	c1, c2, c3, err := l.generateClusters(ctx, content)
	if err != nil {
		return models.LabelResult{}, err
	}
	return models.LabelResult{Summary: summary, Cluster1: c1, Cluster2: c2, Cluster3: c3}, nil
}

// LabelPosts labels every post whose id is in ids, in place. Calls run on a
// bounded worker pool; a failed post gets sentinel values instead of
// aborting the batch, and identical normalized contents share one call.
func (l *Labeler) LabelPosts(ctx context.Context, posts []models.Post, ids map[string]bool) []models.Post {
	type job struct {
		index   int
		content string
		hash    string
	}

	var jobs []job
	for i, p := range posts {
		if !ids[p.PostID] {
			continue
		}
		content := CompactText(p.Content)
		if content == "" {
			continue
		}
		jobs = append(jobs, job{index: i, content: content, hash: HashText(strings.ToLower(content))})
	}
	if len(jobs) == 0 {
		return posts
	}

	// one call per unique content; identical re-posts share the result
	unique := map[string]string{}
	for _, j := range jobs {
		if _, ok := unique[j.hash]; !ok {
			unique[j.hash] = j.content
		}
	}
	l.log.Infof("labeling %d posts (%d unique contents) with %d workers", len(jobs), len(unique), l.maxWorkers)

	var (
		mu      sync.Mutex
		results = make(map[string]models.LabelResult, len(unique))
		sem     = make(chan struct{}, l.maxWorkers)
		wg      sync.WaitGroup
	)
	for hash, content := range unique {
		wg.Add(1)
		sem <- struct{}{}
		go func(hash, content string) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := l.LabelPost(ctx, content)
			if err != nil {
				l.log.Errorf("labeling failed: %v", err)
				result = models.LabelResult{Summary: Sentinel, Cluster1: Sentinel}
			}
			mu.Lock()
			results[hash] = result
			mu.Unlock()
		}(hash, content)
	}
	wg.Wait()

	for _, j := range jobs {
		applyLabels(&posts[j.index], results[j.hash])
	}
	return posts
}

func applyLabels(p *models.Post, r models.LabelResult) {
	p.PostSummary = r.Summary
	p.Cluster1 = r.Cluster1
	p.Cluster2 = r.Cluster2
	p.Cluster3 = r.Cluster3
}

func (l *Labeler) generateSummary(ctx context.Context, content string) (string, error) {
	raw, err := l.generate(ctx, summarySystemInstruction, "Social media post content:\n"+content)
	if err != nil {
		return "", err
	}

	// strict JSON, tolerating stray text around the object
	if i, j := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); i >= 0 && j > i {
		raw = raw[i : j+1]
	}
	var parsed struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", fmt.Errorf("parse summary response: %w", err)
	}
	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" || strings.EqualFold(summary, "null") {
		return Sentinel, nil
	}
	return TrimSummary(summary), nil
}

func (l *Labeler) generateClusters(ctx context.Context, content string) (string, string, string, error) {
	raw, err := l.generate(ctx, clusterSystemInstruction,
		"Social media post:\n"+content+"\n\nChoose 1-3 from ALLOWED THEMES.")
	if err != nil {
		return "", "", "", err
	}
	c1, c2, c3 := ParseLabelLine(raw)
	if c1 == "" {
		c1 = Sentinel
	}
	return c1, c2, c3, nil
}

func (l *Labeler) generate(ctx context.Context, system, prompt string) (string, error) {
	result, err := l.client.Models.GenerateContent(
		ctx,
		l.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		},
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Text()), nil
}
