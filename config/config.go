package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

// DateOnly is the textual form used for analysis period bounds in config.yaml.
const DateOnly = "2006-01-02"

type AppConfig struct {
	Logging   LoggingConfig  `yaml:"logging"`
	Paths     PathsConfig    `yaml:"paths"`
	Analysis  AnalysisConfig `yaml:"analysis"`
	Scraping  ScrapingConfig `yaml:"scraping"`
	Labeling  LabelingConfig `yaml:"labeling"`
	Platform  string         `yaml:"platform"`
	PageURLs  []string       `yaml:"page_urls"`
	Brands    BrandsConfig   `yaml:"brands"`
	DedupKeys []string       `yaml:"dedup_keys"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type PathsConfig struct {
	MasterFile    string `yaml:"master_file"`
	SummariesFile string `yaml:"summaries_file"`
}

// AnalysisConfig defines the default comparison period for the dashboard and
// the weekly summaries. StartDate/EndDate bound the 14-day window; callers may
// override them per request.
type AnalysisConfig struct {
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Timezone  string `yaml:"timezone"`
	DaysBack  int    `yaml:"days_back"`
}

type ScrapingConfig struct {
	MaxPostsPerPage int `yaml:"max_posts_per_page"`
	MaxWaitMinutes  int `yaml:"max_wait_minutes"`
}

type LabelingConfig struct {
	Enabled         bool   `yaml:"enabled"`
	WeeklySummaries bool   `yaml:"weekly_summaries"`
	Model           string `yaml:"model"`
	SummaryModel    string `yaml:"summary_model"`
	MaxWorkers      int    `yaml:"max_workers"`
}

// BrandsConfig groups canonical brand display names for comparison views.
type BrandsConfig struct {
	Akropolis      []string `yaml:"akropolis"`
	BigPlayers     []string `yaml:"big_players"`
	SmallerPlayers []string `yaml:"smaller_players"`
	OtherCities    []string `yaml:"other_cities"`
	Retail         []string `yaml:"retail"`
}

// All returns every configured brand, Akropolis locations first.
func (b BrandsConfig) All() []string {
	out := make([]string, 0, len(b.Akropolis)+len(b.BigPlayers)+len(b.SmallerPlayers)+len(b.OtherCities)+len(b.Retail))
	out = append(out, b.Akropolis...)
	out = append(out, b.BigPlayers...)
	out = append(out, b.SmallerPlayers...)
	out = append(out, b.OtherCities...)
	out = append(out, b.Retail...)
	return out
}

// Groups returns the named brand subsets used by the dashboard comparisons.
func (b BrandsConfig) Groups() map[string][]string {
	return map[string][]string{
		"Akropolis":       b.Akropolis,
		"Big players":     b.BigPlayers,
		"Smaller players": b.SmallerPlayers,
		"Other cities":    b.OtherCities,
		"Retail":          b.Retail,
	}
}

// AnalysisEndDate parses the configured end date. A malformed or missing value
// falls back to today in the configured timezone so a fresh checkout still
// produces a usable window.
func (c AppConfig) AnalysisEndDate() time.Time {
	if t, err := time.Parse(DateOnly, c.Analysis.EndDate); err == nil {
		return t
	}
	now := time.Now().In(c.Location())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Location resolves the configured analysis timezone, defaulting to UTC.
func (c AppConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Analysis.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

var config *AppConfig

func InitApp() error {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		return fmt.Errorf("read %s: %w", CONFIG_FILE, err)
	}

	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse %s: %w", CONFIG_FILE, err)
	}
	applyDefaults(&c)
	config = &c
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.Platform == "" {
		c.Platform = "facebook"
	}
	if c.Analysis.DaysBack <= 0 {
		c.Analysis.DaysBack = 14
	}
	if c.Scraping.MaxPostsPerPage <= 0 {
		c.Scraping.MaxPostsPerPage = 30
	}
	if c.Scraping.MaxWaitMinutes <= 0 {
		c.Scraping.MaxWaitMinutes = 30
	}
	if c.Labeling.MaxWorkers <= 0 {
		c.Labeling.MaxWorkers = 20
	}
	if len(c.DedupKeys) == 0 {
		c.DedupKeys = []string{"post_id"}
	}
}

func GetConfig() AppConfig {
	if config == nil {
		if err := InitApp(); err != nil {
			panic(err)
		}
	}
	return *config
}

// BrightDataToken returns the scraping API credential from the environment.
func BrightDataToken() string {
	return os.Getenv("BRIGHTDATA_API_TOKEN")
}

// GeminiAPIKey returns the LLM credential from the environment.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
