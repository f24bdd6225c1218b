package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/daily-darshan/core/internal/config"
	"github.com/daily-darshan/core/internal/database"
	"github.com/daily-darshan/core/internal/middleware"
	"github.com/daily-darshan/core/internal/modules/content/grahan"
	"github.com/daily-darshan/core/internal/modules/content/poonam"
	"github.com/daily-darshan/core/internal/modules/content/slot"
	"github.com/daily-darshan/core/internal/modules/content/temple"
	"github.com/daily-darshan/core/internal/modules/storage/upload"
	pkgcron "github.com/daily-darshan/core/internal/pkg/cron"
	jwtpkg "github.com/daily-darshan/core/internal/pkg/jwt"
	"github.com/daily-darshan/core/internal/pkg/nativelog"
	pkgredis "github.com/daily-darshan/core/internal/pkg/redis"
	"go.mongodb.org/mongo-driver/mongo"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	logger *zap.Logger
	cancel context.CancelFunc

	mongoDB *mongo.Database
	rdb     *pkgredis.Client
	cal     *slot.Calendar
	sched   *pkgcron.Scheduler

	temples *temple.Service
	poonams *poonam.Service
	grahans *grahan.Service
	chunks  *upload.ChunkManager
}

// New initializes the application: config → store → redis → routes → cron.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cal := slot.NewCalendar(loc)

	ctx, cancel := context.WithCancel(context.Background())

	// Store: Mongo normally, the JSON file fallback when it is down and the
	// fallback is enabled. The handle is built here once and injected; no
	// package carries a store global.
	var (
		mongoDB    *mongo.Database
		templeRepo temple.Repository
		poonamRepo poonam.Repository
		grahanRepo grahan.Repository
	)
	mongoDB, err = database.Connect(ctx, cfg)
	if err != nil {
		if !cfg.OfflineFallback {
			cancel()
			return nil, fmt.Errorf("database: %w", err)
		}
		logger.Warn("mongo unreachable, using file-backed offline store",
			zap.Error(err), zap.String("dataDir", cfg.DataDir))
		mongoDB = nil
		if templeRepo, err = temple.NewFileRepository(cfg.DataDir); err == nil {
			if poonamRepo, err = poonam.NewFileRepository(cfg.DataDir); err == nil {
				grahanRepo, err = grahan.NewFileRepository(cfg.DataDir)
			}
		}
		if err != nil {
			cancel()
			return nil, fmt.Errorf("offline store: %w", err)
		}
	} else {
		templeRepo = temple.NewMongoRepository(mongoDB)
		poonamRepo = poonam.NewMongoRepository(mongoDB)
		grahanRepo = grahan.NewMongoRepository(mongoDB)
	}

	// Redis is optional: absent URL just disables the cache, idempotence and
	// rate-limit middleware.
	var rdb *pkgredis.Client
	if cfg.RedisURL != "" {
		rdb, err = pkgredis.Connect(cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without it", zap.Error(err))
			rdb = nil
		}
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(buildCORSConfig(cfg)))

	storageBackend, err := upload.NewStorage(&cfg.Storage)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("storage: %w", err)
	}

	app := &App{
		cfg:     cfg,
		router:  router,
		logger:  logger,
		cancel:  cancel,
		mongoDB: mongoDB,
		rdb:     rdb,
		cal:     cal,
		sched:   pkgcron.New(),
		temples: temple.NewService(templeRepo, cal),
		poonams: poonam.NewService(poonamRepo),
		grahans: grahan.NewService(grahanRepo),
		chunks:  upload.NewChunkManager(cfg.Storage.TempDir),
	}
	app.registerRoutes(storageBackend)
	app.registerCronJobs()
	go app.sched.Start(ctx)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes store connections.
func (a *App) Shutdown() {
	a.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Disconnect(ctx, a.mongoDB); err != nil {
		a.logger.Warn("mongo disconnect", zap.Error(err))
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) error {
	_ = os.Setenv(nativelog.EnvLogDir, "./logs")

	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}
	return nil
}

func buildCORSConfig(cfg *config.AppConfig) cors.Config {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-idempotence"},
		ExposeHeaders:    []string{"Content-Length", "x-dd-cache"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := originHost(origin)
			for _, pattern := range patterns {
				if originMatchesPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	return corsConfig
}
