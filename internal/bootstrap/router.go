package bootstrap

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	noteshttp "github.com/stateboard/stateboard-backend/internal/annotations/http"
	noteservice "github.com/stateboard/stateboard-backend/internal/annotations/service"
	httpapi "github.com/stateboard/stateboard-backend/internal/api/http"
	"github.com/stateboard/stateboard-backend/internal/api/http/middleware"
	suggestionshttp "github.com/stateboard/stateboard-backend/internal/authoring_suggestions/http"
	discoveryhttp "github.com/stateboard/stateboard-backend/internal/implication_discovery/http"
	discoveryrepo "github.com/stateboard/stateboard-backend/internal/implication_discovery/repository"
	discoveryservice "github.com/stateboard/stateboard-backend/internal/implication_discovery/service"
	graphhttp "github.com/stateboard/stateboard-backend/internal/implication_graph/http"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/layout"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
	edithttp "github.com/stateboard/stateboard-backend/internal/state_detail_editing/http"
	editservice "github.com/stateboard/stateboard-backend/internal/state_detail_editing/service"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/writer"
	"github.com/stateboard/stateboard-backend/internal/test_generation/generator"
	generationhttp "github.com/stateboard/stateboard-backend/internal/test_generation/http"
	lockrepo "github.com/stateboard/stateboard-backend/internal/test_generation/repository"
	workspacehttp "github.com/stateboard/stateboard-backend/internal/workspace_state/http"
	workspacerepo "github.com/stateboard/stateboard-backend/internal/workspace_state/repository"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins string

	DB    *pgxpool.Pool
	Redis *redis.Client

	Discovery *discoveryservice.DiscoveryService
	ScanRepo  *discoveryrepo.ScanRepository
	Layouts   *layout.Repository
	Theme     *theme.Theme
	Writer    *writer.Writer
	Details   *editservice.DetailService
	Workspace *workspacerepo.Repository
	Locks     *lockrepo.LockStore
	Generator *generator.Generator
	Notes     *noteservice.NoteService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")

	graphHandler := graphhttp.NewHandler(dep.Discovery, dep.Layouts, dep.Theme, dep.Workspace)
	graphHandler.RegisterTheme(api)

	discoveryHandler := discoveryhttp.NewHandler(dep.Discovery, dep.ScanRepo)
	discoveryHandler.Register(api.Group("/discovery"))

	implications := api.Group("/implications")
	graphHandler.Register(implications)
	edithttp.NewHandler(dep.Discovery, dep.Details, dep.Writer).Register(implications)
	suggestionshttp.NewHandler(dep.Discovery, dep.Workspace, dep.Workspace).Register(implications)

	noteshttp.NewHandler(dep.Notes).Register(api.Group("/notes"))

	generationHandler := generationhttp.NewHandler(dep.Locks, dep.Generator, dep.Discovery)
	generationHandler.RegisterLocks(api.Group("/locks"))
	generationHandler.RegisterGeneration(api.Group("/generation"))

	workspacehttp.NewHandler(dep.Workspace).Register(api.Group("/workspace"))

	return r
}

func corsConfig(origins string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-Request-Id", "Authorization")
	if origins == "" || origins == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	return cfg
}
