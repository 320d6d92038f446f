package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/config"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/logger"
)

func main() {
	if err := config.InitApp(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx := context.Background()
	p := newPipeline(cfg)

	var err error
	switch {
	case len(os.Args) < 2:
		err = p.runFull(ctx)
	case os.Args[1] == "snapshot":
		if len(os.Args) < 3 {
			err = fmt.Errorf("usage: %s snapshot <snapshot_id>", os.Args[0])
			break
		}
		err = p.runSnapshot(ctx, os.Args[2])
	case os.Args[1] == "process":
		err = p.runProcess(ctx)
	case os.Args[1] == "summaries":
		err = p.runSummaries(ctx)
	case os.Args[1] == "status":
		err = p.runStatus()
	default:
		err = fmt.Errorf("unknown command %q (expected snapshot, process, summaries or status)", os.Args[1])
	}
	if err != nil {
		logger.Log.Errorf("pipeline failed: %v", err)
		os.Exit(1)
	}
}
