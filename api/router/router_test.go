package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/api/middleware"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/api/router"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/config"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/storage"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewStore(filepath.Join(t.TempDir(), "master.csv"))
	assert.NoError(t, store.Save([]models.Post{
		{
			Platform:        "facebook",
			PostID:          "cur_1",
			CreatedDate:     "2025-10-03 10:00:00",
			Brand:           "PANORAMA",
			Likes:           10,
			TotalEngagement: 10,
			Cluster1:        "Events and Experiences",
		},
		{
			Platform:        "facebook",
			PostID:          "prev_1",
			CreatedDate:     "2025-09-26 10:00:00",
			Brand:           "PANORAMA",
			Likes:           5,
			TotalEngagement: 5,
		},
	}))

	cfg := config.AppConfig{
		Analysis: config.AnalysisConfig{EndDate: "2025-10-07"},
		Brands:   config.BrandsConfig{BigPlayers: []string{"PANORAMA"}},
	}
	return router.New(store, cfg)
}

func get(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealth(t *testing.T) {
	w, body := get(t, testRouter(t), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "present", body["dataset"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestWindows(t *testing.T) {
	w, body := get(t, testRouter(t), "/api/v1/windows")
	assert.Equal(t, http.StatusOK, w.Code)

	current := body["current"].(map[string]any)
	previous := body["previous"].(map[string]any)
	currentStats := current["stats"].(map[string]any)
	assert.Equal(t, float64(1), currentStats["posts"])
	assert.Equal(t, float64(10), currentStats["likes"])
	assert.Len(t, current["rows"].([]any), 1)
	assert.Len(t, previous["rows"].([]any), 1)

	full := body["full"].(map[string]any)
	assert.Len(t, full["rows"].([]any), 2)
}

func TestWindowsBadEndDate(t *testing.T) {
	w, _ := get(t, testRouter(t), "/api/v1/windows?end=07.10.2025")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBrandComparison(t *testing.T) {
	w, body := get(t, testRouter(t), "/api/v1/brands/PANORAMA/comparison")
	assert.Equal(t, http.StatusOK, w.Code)

	comparison := body["comparison"].(map[string]any)
	change := comparison["change"].(map[string]any)
	assert.Equal(t, float64(100), change["likes"])
}

func TestBrandComparisonUnknownBrand(t *testing.T) {
	w, _ := get(t, testRouter(t), "/api/v1/brands/NOBODY/comparison")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupsComparison(t *testing.T) {
	w, body := get(t, testRouter(t), "/api/v1/groups/comparison")
	assert.Equal(t, http.StatusOK, w.Code)

	groups := body["groups"].(map[string]any)
	assert.Contains(t, groups, "Big players")
}

func TestTopPosts(t *testing.T) {
	w, body := get(t, testRouter(t), "/api/v1/posts/top?limit=1")
	assert.Equal(t, http.StatusOK, w.Code)

	posts := body["posts"].([]any)
	assert.Len(t, posts, 1)
	assert.Equal(t, "cur_1", posts[0].(map[string]any)["post_id"])
}

func TestClusters(t *testing.T) {
	w, body := get(t, testRouter(t), "/api/v1/clusters")
	assert.Equal(t, http.StatusOK, w.Code)

	clusters := body["clusters"].([]any)
	assert.Len(t, clusters, 1)
	assert.Equal(t, "Events and Experiences", clusters[0].(map[string]any)["cluster"])
}
