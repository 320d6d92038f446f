package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/logger"
)

const defaultBaseURL = "https://api.brightdata.com/datasets/v3"

const (
	pollInterval     = 20 * time.Second
	downloadRetries  = 5
	triggerDateForm  = "01-02-2006"
	facebookDataset  = "gd_lkaxegm826bjpoo9m5"
	defaultTimeout   = 60 * time.Second
	buildingBackoff  = time.Minute
	transientBackoff = 10 * time.Second
)

// Client talks to the Bright Data dataset API: trigger a scrape, poll the
// snapshot until ready, download the records.
type Client struct {
	token      string
	datasetID  string
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("scraper: missing BRIGHTDATA_API_TOKEN")
	}
	return &Client{
		token:      token,
		datasetID:  facebookDataset,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        logger.Log,
	}, nil
}

// PageRequest is one page entry in a trigger payload.
type PageRequest struct {
	URL        string `json:"url"`
	NumOfPosts int    `json:"num_of_posts"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// BuildPageRequests prepares the trigger payload for the configured page
// URLs and scraping window.
func BuildPageRequests(pageURLs []string, start, end time.Time, maxPosts int) []PageRequest {
	reqs := make([]PageRequest, 0, len(pageURLs))
	for _, u := range pageURLs {
		reqs = append(reqs, PageRequest{
			URL:        u,
			NumOfPosts: maxPosts,
			StartDate:  start.Format(triggerDateForm),
			EndDate:    end.Format(triggerDateForm),
		})
	}
	return reqs
}

// Trigger starts a scrape and returns the snapshot id to poll.
func (c *Client) Trigger(ctx context.Context, pages []PageRequest) (string, error) {
	body, err := json.Marshal(pages)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/trigger?dataset_id=%s&include_errors=true", c.baseURL, url.QueryEscape(c.datasetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		SnapshotID string `json:"snapshot_id"`
	}
	if err := c.do(req, &result); err != nil {
		return "", fmt.Errorf("trigger scrape: %w", err)
	}
	if result.SnapshotID == "" {
		return "", fmt.Errorf("trigger scrape: no snapshot id in response")
	}
	c.log.Infof("triggered scrape, snapshot %s", result.SnapshotID)
	return result.SnapshotID, nil
}

// WaitForSnapshot polls snapshot progress until ready or the deadline
// passes.
func (c *Client) WaitForSnapshot(ctx context.Context, snapshotID string, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/progress/%s", c.baseURL, snapshotID), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		var progress struct {
			Status string `json:"status"`
		}
		if err := c.do(req, &progress); err != nil {
			return fmt.Errorf("check snapshot progress: %w", err)
		}
		c.log.Infof("snapshot %s status: %s", snapshotID, progress.Status)

		if progress.Status == "ready" {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("snapshot %s not ready after %s", snapshotID, maxWait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// DownloadSnapshot fetches the scraped records, retrying while the snapshot
// is still building and tolerating the payload shape differences the API
// produces (bare list, or an object wrapping the list).
func (c *Client) DownloadSnapshot(ctx context.Context, snapshotID string) ([]map[string]any, error) {
	endpoint := fmt.Sprintf("%s/snapshot/%s?format=json", c.baseURL, snapshotID)

	for attempt := 1; attempt <= downloadRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		var payload any
		if err := c.do(req, &payload); err != nil {
			if attempt == downloadRetries {
				return nil, fmt.Errorf("download snapshot %s: %w", snapshotID, err)
			}
			c.log.Warnf("download snapshot %s attempt %d failed: %v", snapshotID, attempt, err)
			if err := sleep(ctx, transientBackoff); err != nil {
				return nil, err
			}
			continue
		}

		if status, message, ok := statusEnvelope(payload); ok {
			if status == "building" && attempt < downloadRetries {
				wait := buildingBackoff * time.Duration(attempt)
				c.log.Infof("snapshot %s still building (%s), retrying in %s", snapshotID, message, wait)
				if err := sleep(ctx, wait); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("download snapshot %s: status %s: %s", snapshotID, status, message)
		}

		records, err := ExtractRecords(payload)
		if err != nil {
			return nil, fmt.Errorf("download snapshot %s: %w", snapshotID, err)
		}
		c.log.Infof("downloaded %d records from snapshot %s", len(records), snapshotID)
		return records, nil
	}
	return nil, fmt.Errorf("download snapshot %s: retries exhausted", snapshotID)
}

// Scrape runs the full trigger/wait/download cycle for the given pages and
// stamps platform and scraped_at onto every record.
func (c *Client) Scrape(ctx context.Context, pages []PageRequest, maxWait time.Duration, platform string) ([]map[string]any, error) {
	snapshotID, err := c.Trigger(ctx, pages)
	if err != nil {
		return nil, err
	}
	if err := c.WaitForSnapshot(ctx, snapshotID, maxWait); err != nil {
		return nil, err
	}
	records, err := c.DownloadSnapshot(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	return StampRecords(records, platform), nil
}

// StampRecords adds the platform and scrape timestamp to each raw record.
func StampRecords(records []map[string]any, platform string) []map[string]any {
	now := time.Now().Format(time.RFC3339)
	for _, r := range records {
		r["platform"] = platform
		r["scraped_at"] = now
	}
	return records
}

// ExtractRecords pulls the record list out of whichever payload shape the
// API returned: a bare list, or an object with data/results/items, or a
// single record object.
func ExtractRecords(payload any) ([]map[string]any, error) {
	switch data := payload.(type) {
	case []any:
		return mapRecords(data), nil
	case map[string]any:
		for _, key := range []string{"data", "results", "items"} {
			if list, ok := data[key].([]any); ok {
				return mapRecords(list), nil
			}
		}
		return []map[string]any{data}, nil
	default:
		return nil, fmt.Errorf("unexpected payload type %T", payload)
	}
}

func mapRecords(list []any) []map[string]any {
	records := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if record, ok := item.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}

func statusEnvelope(payload any) (status, message string, ok bool) {
	m, isMap := payload.(map[string]any)
	if !isMap {
		return "", "", false
	}
	s, hasStatus := m["status"].(string)
	msg, hasMessage := m["message"].(string)
	if !hasStatus || !hasMessage {
		return "", "", false
	}
	return s, msg, true
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(body))
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
