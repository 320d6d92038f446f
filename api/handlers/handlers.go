package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/analytics"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/config"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/storage"
)

const defaultTopLimit = 10

// WindowsHandler returns the comparison windows for the requested end date,
// each with its rows and aggregates over all brands.
func WindowsHandler(store *storage.Store, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, periods, ok := loadWindowed(c, store, cfg)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"periods":  periods,
			"full":     windowPayload(posts, periods.Full),
			"current":  windowPayload(posts, periods.Current),
			"previous": windowPayload(posts, periods.Previous),
		})
	}
}

func windowPayload(posts []models.Post, w analytics.Window) gin.H {
	rows := analytics.FilterWindow(posts, w)
	return gin.H{
		"stats": analytics.WindowStatsFor(rows, nil),
		"rows":  rows,
	}
}

// BrandComparisonHandler returns the week-over-week comparison for one
// configured brand.
func BrandComparisonHandler(store *storage.Store, cfg config.AppConfig) gin.HandlerFunc {
	known := map[string]bool{}
	for _, b := range cfg.Brands.All() {
		known[b] = true
	}
	return func(c *gin.Context) {
		brand := c.Param("brand")
		if !known[brand] {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown brand"})
			return
		}
		posts, periods, ok := loadWindowed(c, store, cfg)
		if !ok {
			return
		}
		current := analytics.FilterWindow(posts, periods.Current)
		previous := analytics.FilterWindow(posts, periods.Previous)
		c.JSON(http.StatusOK, gin.H{
			"brand":      brand,
			"periods":    periods,
			"comparison": analytics.Compare(current, previous, []string{brand}),
		})
	}
}

// GroupsComparisonHandler returns one comparison per configured brand group.
func GroupsComparisonHandler(store *storage.Store, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, periods, ok := loadWindowed(c, store, cfg)
		if !ok {
			return
		}
		current := analytics.FilterWindow(posts, periods.Current)
		previous := analytics.FilterWindow(posts, periods.Previous)

		groups := map[string]analytics.Comparison{}
		for name, brands := range cfg.Brands.Groups() {
			// an unconfigured group has no brands to aggregate
			if len(brands) == 0 {
				continue
			}
			groups[name] = analytics.Compare(current, previous, brands)
		}
		c.JSON(http.StatusOK, gin.H{"periods": periods, "groups": groups})
	}
}

// TopPostsHandler returns the highest-engagement posts of the current window.
func TopPostsHandler(store *storage.Store, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultTopLimit)))
		if limit <= 0 {
			limit = defaultTopLimit
		}
		posts, periods, ok := loadWindowed(c, store, cfg)
		if !ok {
			return
		}
		current := analytics.FilterWindow(posts, periods.Current)
		c.JSON(http.StatusOK, gin.H{
			"periods": periods,
			"posts":   analytics.TopPosts(current, limit),
		})
	}
}

// ClustersHandler returns the taxonomy label distribution of the current
// window.
func ClustersHandler(store *storage.Store, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, periods, ok := loadWindowed(c, store, cfg)
		if !ok {
			return
		}
		current := analytics.FilterWindow(posts, periods.Current)
		c.JSON(http.StatusOK, gin.H{
			"periods":  periods,
			"clusters": analytics.ClusterCounts(current),
		})
	}
}

// loadWindowed resolves the end date, loads the dataset and computes the
// windows. On a bad end date it writes the error response itself.
func loadWindowed(c *gin.Context, store *storage.Store, cfg config.AppConfig) ([]models.Post, analytics.Periods, bool) {
	end := cfg.AnalysisEndDate()
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(config.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be YYYY-MM-DD"})
			return nil, analytics.Periods{}, false
		}
		end = parsed
	}

	posts, err := store.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, analytics.Periods{}, false
	}
	return posts, analytics.WindowsEnding(end), true
}
