package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stateboard/stateboard-backend/config"
	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/analyzer"
	"github.com/stateboard/stateboard-backend/internal/bootstrap"
	discoverydomain "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	discoveryrepo "github.com/stateboard/stateboard-backend/internal/implication_discovery/repository"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/scanner"
	discoveryservice "github.com/stateboard/stateboard-backend/internal/implication_discovery/service"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/build"
	workspacedomain "github.com/stateboard/stateboard-backend/internal/workspace_state/domain"
	workspacerepo "github.com/stateboard/stateboard-backend/internal/workspace_state/repository"
)

// RunSchedule rescans the configured projects on a cron schedule and
// refreshes the workspace caches so reloading dashboards pick up fresh
// data without triggering a scan themselves.
func RunSchedule() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	projects := splitProjects(cfg.Discovery.CronProjects)
	if len(projects) == 0 {
		log.Fatal("RESCAN_PROJECTS is empty, nothing to schedule")
	}

	ctx := context.Background()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	sc, err := scanner.New(cfg.Discovery.ParseCacheSize, cfg.Discovery.MaxFileSizeKB)
	if err != nil {
		log.Fatalf("scanner: %v", err)
	}

	scanRepo := discoveryrepo.NewScanRepository(rdb)
	discovery := discoveryservice.NewDiscoveryService(
		sc, scanRepo,
		cfg.Discovery.ProjectsRoot,
		time.Duration(cfg.Discovery.ScanIntervalSec)*time.Second,
	)
	workspace := workspacerepo.NewRepository(rdb)

	c := cron.New(cron.WithSeconds())
	_, err = c.AddFunc(cfg.Discovery.CronSchedule, func() {
		for _, project := range projects {
			rescan(ctx, discovery, workspace, project)
		}
	})
	if err != nil {
		log.Fatalf("cron schedule %q: %v", cfg.Discovery.CronSchedule, err)
	}

	c.Start()
	log.Printf("[worker] schedule %q over %d project(s)", cfg.Discovery.CronSchedule, len(projects))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-c.Stop().Done()
	log.Println("[worker] schedule stopped")
}

func rescan(ctx context.Context, discovery *discoveryservice.DiscoveryService, workspace *workspacerepo.Repository, project string) {
	result, err := discovery.Scan(ctx, project)
	if err == discoverydomain.ErrScanThrottled {
		log.Printf("[worker] %s: scan throttled, skipping this run", project)
		return
	}
	if err != nil {
		log.Printf("[worker] %s: scan failed: %v", project, err)
		return
	}

	g := build.FromDiscovery(result)
	analysis := analyzer.Run(result)

	for key, value := range map[string]any{
		workspacedomain.KeyLastProjectPath:     project,
		workspacedomain.KeyLastDiscoveryResult: result,
		workspacedomain.KeyLastGraphData:       g,
		workspacedomain.KeyLastAnalysisResult:  analysis,
	} {
		if err := workspace.Set(ctx, key, value); err != nil {
			log.Printf("[worker] %s: refresh %s: %v", project, key, err)
		}
	}

	log.Printf("[worker] %s: %d nodes, %d edges (%s)", project, len(g.Nodes), len(g.Edges), result.ScanID)
}

func splitProjects(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
