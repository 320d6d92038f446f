package router

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/api/handlers"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/api/middleware"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/config"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/storage"
)

func New(store *storage.Store, cfg config.AppConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if _, err := os.Stat(store.Path()); err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "dataset": "missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "dataset": "present"})
	})

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/windows", handlers.WindowsHandler(store, cfg))
		api.GET("/brands/:brand/comparison", handlers.BrandComparisonHandler(store, cfg))
		api.GET("/groups/comparison", handlers.GroupsComparisonHandler(store, cfg))
		api.GET("/posts/top", handlers.TopPostsHandler(store, cfg))
		api.GET("/clusters", handlers.ClustersHandler(store, cfg))
	}

	return r
}
