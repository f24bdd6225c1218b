package app

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/daily-darshan/core/internal/middleware"
	"github.com/daily-darshan/core/internal/modules/auth"
	"github.com/daily-darshan/core/internal/modules/content/grahan"
	"github.com/daily-darshan/core/internal/modules/content/poonam"
	"github.com/daily-darshan/core/internal/modules/content/temple"
	"github.com/daily-darshan/core/internal/modules/stats/dashboard"
	"github.com/daily-darshan/core/internal/modules/storage/upload"
	"github.com/daily-darshan/core/internal/modules/system/health"
	"github.com/daily-darshan/core/internal/modules/system/servertime"
	"github.com/daily-darshan/core/internal/modules/tasks/crontask"
	"github.com/daily-darshan/core/internal/pkg/response"
)

func (a *App) registerRoutes(storageBackend upload.Storage) {
	r := a.router
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Redis-backed middleware only mounts when redis is configured.
	if a.rdb != nil {
		r.Use(middleware.RateLimit(a.rdb.Raw()))
		r.Use(middleware.Idempotence(a.rdb.Raw()))
	}

	// Local media is served straight off disk; S3 media lives on its own
	// domain.
	if a.cfg.Storage.Driver != "s3" {
		r.Static("/uploads", a.cfg.Storage.StaticDir)
	}

	api := r.Group("/api")
	api.Use(middleware.OptionalAuth())
	if a.rdb != nil {
		api.Use(middleware.HTTPCache(a.rdb.Raw(), middleware.HTTPCacheOptions{
			TTL: 30 * time.Second,
			SkipPaths: []string{
				"/api/server-time", "/api/health", "/api/ping",
			},
		}))
		api.Use(middleware.PurgeOnWrite(a.rdb.Raw()))
	}

	api.GET("", func(c *gin.Context) {
		response.OK(c, gin.H{
			"name":    "daily-darshan-core",
			"version": "1.0.0",
		})
	})

	health.RegisterRoutes(api, a.temples.StoreKind(), a.rdb)
	servertime.RegisterRoutes(api, a.cal)

	auth.NewHandler(auth.NewService(a.cfg.Admin)).RegisterRoutes(api, authMW)
	temple.NewHandler(a.temples).RegisterRoutes(api, authMW)
	poonam.NewHandler(a.poonams).RegisterRoutes(api, authMW)
	grahan.NewHandler(a.grahans).RegisterRoutes(api, authMW)
	upload.NewHandler(storageBackend, a.chunks, a.cfg.Storage.MaxUploadMB).
		RegisterRoutes(api, authMW)
	dashboard.NewHandler(a.temples, a.poonams, a.grahans).RegisterRoutes(api, authMW)
	crontask.NewHandler(a.sched).RegisterRoutes(api, authMW)
}
