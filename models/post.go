package models

// Post is the canonical row of the master dataset, one per unique post_id.
// csv tags define the on-disk column names of the master file.
type Post struct {
	Platform    string `csv:"platform" json:"platform"`
	PostID      string `csv:"post_id" json:"post_id"`
	CreatedDate string `csv:"created_date" json:"created_date"`
	Brand       string `csv:"brand" json:"brand"`
	Content     string `csv:"content" json:"content"`
	SourceURL   string `csv:"source_url" json:"source_url"`

	Likes    int64 `csv:"likes" json:"likes"`
	Comments int64 `csv:"comments" json:"comments"`
	Shares   int64 `csv:"shares" json:"shares"`

	// TotalEngagement is the weighted score likes*1 + comments*3 + shares*5.
	TotalEngagement int64   `csv:"total_engagement" json:"total_engagement"`
	EngagementRate  float64 `csv:"engagement_rate" json:"engagement_rate"`

	// Enrichment columns, populated by the labeler after first sight of a
	// post. PostSummary holds the sentinel "NONE" when labeling yielded
	// nothing; the cluster columns are ranked best-fit categories.
	PostSummary string `csv:"post_summary" json:"post_summary"`
	Cluster1    string `csv:"cluster_1" json:"cluster_1"`
	Cluster2    string `csv:"cluster_2" json:"cluster_2"`
	Cluster3    string `csv:"cluster_3" json:"cluster_3"`

	// Provider passthrough columns, kept verbatim for traceability.
	PageName        string `csv:"page_name" json:"page_name"`
	UserUsernameRaw string `csv:"user_username_raw" json:"user_username_raw"`
	DatePosted      string `csv:"date_posted" json:"date_posted"`
	NumComments     string `csv:"num_comments" json:"num_comments"`
	NumShares       string `csv:"num_shares" json:"num_shares"`
	ScrapedAt       string `csv:"scraped_at" json:"scraped_at"`
}

// Labeled reports whether enrichment has been attempted for this post.
func (p Post) Labeled() bool {
	return p.PostSummary != "" || p.Cluster1 != ""
}

// LabelResult is what the labeling collaborator returns for one post.
type LabelResult struct {
	Summary  string `json:"summary"`
	Cluster1 string `json:"cluster_1"`
	Cluster2 string `json:"cluster_2"`
	Cluster3 string `json:"cluster_3"`
}
