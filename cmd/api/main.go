package main

import (
	"context"
	"log"
	"time"

	"github.com/stateboard/stateboard-backend/config"
	noterepo "github.com/stateboard/stateboard-backend/internal/annotations/repository"
	noteservice "github.com/stateboard/stateboard-backend/internal/annotations/service"
	"github.com/stateboard/stateboard-backend/internal/bootstrap"
	discoveryrepo "github.com/stateboard/stateboard-backend/internal/implication_discovery/repository"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/scanner"
	discoveryservice "github.com/stateboard/stateboard-backend/internal/implication_discovery/service"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/layout"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
	editservice "github.com/stateboard/stateboard-backend/internal/state_detail_editing/service"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/writer"
	"github.com/stateboard/stateboard-backend/internal/storage/postgres"
	"github.com/stateboard/stateboard-backend/internal/test_generation/generator"
	lockrepo "github.com/stateboard/stateboard-backend/internal/test_generation/repository"
	workspacerepo "github.com/stateboard/stateboard-backend/internal/workspace_state/repository"
)

const serviceName = "stateboard-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database)})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	sqlDB, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("postgres (sql): %v", err)
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	th, err := theme.Load(cfg.Discovery.ThemePath)
	if err != nil {
		log.Fatalf("theme: %v", err)
	}

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

	locks := lockrepo.NewLockStore(pool)
	notes := noteservice.NewNoteService(noterepo.NewNoteRepository(sqlDB))
	w := writer.New(scanRepo, discovery)

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		DB:          pool,
		Redis:       rdb,
		Discovery:   discovery,
		ScanRepo:    scanRepo,
		Layouts:     layout.NewRepository(rdb, true),
		Theme:       th,
		Writer:      w,
		Details:     editservice.New(w, notes, locks),
		Workspace:   workspacerepo.NewRepository(rdb),
		Locks:       locks,
		Generator:   generator.New(locks),
		Notes:       notes,
	})

	log.Printf("[api] %s v%s listening on :%s (projects root %s)",
		serviceName, cfg.App.Version, cfg.Server.Port, cfg.Discovery.ProjectsRoot)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
