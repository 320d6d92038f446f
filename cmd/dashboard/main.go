package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/cors"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/api/router"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/config"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/logger"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/storage"
)

func main() {
	if err := config.InitApp(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	store := storage.NewStore(cfg.Paths.MasterFile)
	r := router.New(store, cfg)

	addr := os.Getenv("DASHBOARD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// browser dashboards are served from a different origin
	handler := cors.Default().Handler(r)

	logger.Log.Infof("dashboard API listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil && err != http.ErrServerClosed {
		logger.Log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
