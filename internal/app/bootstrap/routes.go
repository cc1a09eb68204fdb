// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	foldersfeature "github.com/aalaeg1/into-EdU/internal/app/features/folders"
	healthfeature "github.com/aalaeg1/into-EdU/internal/app/features/health"
	playerfeature "github.com/aalaeg1/into-EdU/internal/app/features/player"
	"github.com/aalaeg1/into-EdU/internal/app/system/handles"
	"github.com/aalaeg1/into-EdU/internal/app/system/identity"
	"github.com/aalaeg1/into-EdU/internal/app/system/timeouts"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed.
//
// Route surface:
//   - /api/*  JSON API; each request must carry the caller identity header
//   - /live/* live handle bytes; handle IDs are unguessable UUIDs
//   - /health, /ready, /livez
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	registry := handles.NewRegistry(appCfg.HandleTTL, logger)

	foldersHandler := foldersfeature.NewHandler(deps.MongoDatabase, deps.FileStorage, logger)
	playerHandler := playerfeature.NewHandler(deps.MongoDatabase, deps.FileStorage, registry, logger)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, registry, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Timeout(timeouts.Request()))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// JSON API: every route sees the caller's identity.
	r.Route("/api", func(r chi.Router) {
		r.Use(identity.Middleware(appCfg.IdentityHeader))
		r.Mount("/folders", foldersfeature.Routes(foldersHandler))
		r.Mount("/teachers", foldersfeature.TeacherRoutes(foldersHandler))
		r.Mount("/player", playerfeature.Routes(playerHandler))
	})

	// Live handle bytes are loaded by the rendering surface (iframes,
	// img tags), which cannot attach the identity header.
	r.Mount("/live", playerfeature.LiveRoutes(playerHandler))

	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	logger.Info("HTTP handler built")
	return r, nil
}
