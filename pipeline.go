package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/analytics"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/config"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/labeler"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/logger"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/scraper"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/storage"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/summaries"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/transform"
)

// pipeline wires the weekly run together: scrape, normalize, label new
// posts, merge into the dataset, and optionally write weekly summaries.
type pipeline struct {
	cfg   config.AppConfig
	store *storage.Store
	log   logger.Logger
}

func newPipeline(cfg config.AppConfig) *pipeline {
	return &pipeline{
		cfg:   cfg,
		store: storage.NewStore(cfg.Paths.MasterFile),
		log:   logger.Log,
	}
}

// runFull is the default weekly run: trigger a fresh scrape, process the
// records, then generate summaries when enabled.
func (p *pipeline) runFull(ctx context.Context) error {
	client, err := scraper.NewClient(config.BrightDataToken())
	if err != nil {
		return err
	}

	end := p.cfg.AnalysisEndDate()
	start := end.AddDate(0, 0, -p.cfg.Analysis.DaysBack)
	pages := scraper.BuildPageRequests(p.cfg.PageURLs, start, end, p.cfg.Scraping.MaxPostsPerPage)
	maxWait := time.Duration(p.cfg.Scraping.MaxWaitMinutes) * time.Minute

	p.log.Infof("scraping %d pages from %s to %s",
		len(pages), start.Format(config.DateOnly), end.Format(config.DateOnly))
	records, err := client.Scrape(ctx, pages, maxWait, p.cfg.Platform)
	if err != nil {
		return err
	}

	if err := p.processRecords(ctx, records); err != nil {
		return err
	}
	if p.cfg.Labeling.WeeklySummaries {
		return p.runSummaries(ctx)
	}
	return nil
}

// runSnapshot resumes from an already-triggered scrape, skipping the trigger
// and wait phases.
func (p *pipeline) runSnapshot(ctx context.Context, snapshotID string) error {
	client, err := scraper.NewClient(config.BrightDataToken())
	if err != nil {
		return err
	}
	records, err := client.DownloadSnapshot(ctx, snapshotID)
	if err != nil {
		return err
	}
	return p.processRecords(ctx, scraper.StampRecords(records, p.cfg.Platform))
}

// processRecords runs the ingest path on raw scraped records: normalize,
// drop stale rows, label posts not yet in the dataset, merge and save.
func (p *pipeline) processRecords(ctx context.Context, records []map[string]any) error {
	posts, err := transform.Normalize(records, p.cfg.Platform)
	if err != nil {
		return err
	}
	posts = transform.FilterRecent(posts, p.cfg.AnalysisEndDate(), p.cfg.Analysis.DaysBack)
	posts = transform.ComputeEngagement(posts)
	p.log.Infof("normalized %d posts from %d raw records", len(posts), len(records))

	existing, err := p.store.Load()
	if err != nil {
		return err
	}
	newIDs := storage.NewPostIDs(posts, existing)
	p.log.Infof("%d posts not yet in dataset", len(newIDs))

	posts = p.labelNew(ctx, posts, newIDs)

	combined, stats, err := p.store.MergeAndSave(posts, p.cfg.DedupKeys)
	if err != nil {
		return err
	}
	logger.InfoWithFields("dataset updated", logger.Fields{
		"path":       p.store.Path(),
		"total":      len(combined),
		"new":        len(newIDs),
		"duplicates": stats.Duplicates,
		"invalid":    stats.Invalid,
	})
	return nil
}

// runProcess re-runs enrichment over the stored dataset without scraping:
// engagement is recomputed and posts that never got labels are labeled.
func (p *pipeline) runProcess(ctx context.Context) error {
	posts, err := p.store.Load()
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		p.log.Warn("dataset is empty, nothing to process")
		return nil
	}
	posts = transform.ComputeEngagement(posts)

	unlabeled := map[string]bool{}
	for _, post := range posts {
		if post.PostID != "" && !post.Labeled() {
			unlabeled[post.PostID] = true
		}
	}
	p.log.Infof("%d posts without labels", len(unlabeled))
	posts = p.labelNew(ctx, posts, unlabeled)

	return p.store.Save(posts)
}

// runSummaries generates the per-brand weekly commentary and appends it to
// the summaries history.
func (p *pipeline) runSummaries(ctx context.Context) error {
	apiKey := config.GeminiAPIKey()
	if apiKey == "" {
		return fmt.Errorf("weekly summaries require GEMINI_API_KEY")
	}
	model := p.cfg.Labeling.SummaryModel
	if model == "" {
		model = p.cfg.Labeling.Model
	}
	gen, err := summaries.NewGenerator(ctx, apiKey, model, p.cfg.Labeling.MaxWorkers)
	if err != nil {
		return err
	}

	posts, err := p.store.Load()
	if err != nil {
		return err
	}
	periods := analytics.WindowsEnding(p.cfg.AnalysisEndDate())
	current := analytics.FilterWindow(posts, periods.Current)
	previous := analytics.FilterWindow(posts, periods.Previous)

	byBrand := gen.GenerateAll(ctx, current, previous, p.cfg.Brands.All())
	file := summaries.NewFile(p.cfg.Paths.SummariesFile)
	return file.Append(summaries.Row{
		StartDate: periods.Current.Start,
		EndDate:   periods.Current.End,
		ByBrand:   byBrand,
	})
}

// runStatus prints dataset and summaries-history counters.
func (p *pipeline) runStatus() error {
	posts, err := p.store.Load()
	if err != nil {
		return err
	}
	summary := storage.Summarize(posts)

	weeks := 0
	if rows, err := summaries.NewFile(p.cfg.Paths.SummariesFile).Rows(); err == nil {
		weeks = len(rows)
	}

	logger.InfoWithFields("dataset status", logger.Fields{
		"path":             p.store.Path(),
		"posts":            summary.TotalPosts,
		"platforms":        len(summary.Platforms),
		"brands":           len(summary.Brands),
		"earliest":         summary.Earliest,
		"latest":           summary.Latest,
		"total_engagement": summary.TotalEngagement,
		"summary_weeks":    weeks,
	})
	return nil
}

// labelNew enriches the posts in ids. Labeling quietly becomes a no-op when
// disabled or when no API key is configured, so ingest keeps working.
func (p *pipeline) labelNew(ctx context.Context, posts []models.Post, ids map[string]bool) []models.Post {
	if !p.cfg.Labeling.Enabled || len(ids) == 0 {
		return posts
	}
	apiKey := config.GeminiAPIKey()
	if apiKey == "" {
		p.log.Warn("GEMINI_API_KEY not set, skipping labeling")
		return posts
	}
	lbl, err := labeler.New(ctx, apiKey, p.cfg.Labeling.Model, p.cfg.Labeling.MaxWorkers)
	if err != nil {
		p.log.Errorf("labeler init failed, skipping labeling: %v", err)
		return posts
	}
	return lbl.LabelPosts(ctx, posts, ids)
}
