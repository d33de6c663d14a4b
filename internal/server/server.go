package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/costmgmt/koku/internal/config"
	manifestdomain "github.com/costmgmt/koku/internal/manifest/domain"
	providerdomain "github.com/costmgmt/koku/internal/provider/domain"
	reportdomain "github.com/costmgmt/koku/internal/reportdata/domain"
	"github.com/costmgmt/koku/internal/status"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(
		NewEngine,
		NewServer,
	),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Server exposes the manifest store, report cleaner and status reporter over
// HTTP. It is a thin translation layer; all invariants live in the services.
type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	manifestSvc manifestdomain.Service
	cleaner     reportdomain.Cleaner
	providers   providerdomain.Repository
	reporter    *status.Reporter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	ManifestSvc manifestdomain.Service
	Cleaner     reportdomain.Cleaner
	Providers   providerdomain.Repository
	Reporter    *status.Reporter
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		manifestSvc: p.ManifestSvc,
		cleaner:     p.Cleaner,
		providers:   p.Providers,
		reporter:    p.Reporter,
	}
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/status/", s.GetStatus)
	s.engine.GET("/status", s.GetStatus)

	api := s.engine.Group("/api/v1")
	{
		api.GET("/manifests", s.GetManifest)
		api.POST("/manifests", s.AddManifest)
		api.GET("/manifests/:id", s.GetManifestByID)
		api.DELETE("/manifests/:id", s.DeleteManifest)
		api.POST("/report-data/purge", s.PurgeReportData)
	}
}

func registerRoutes(s *Server) {
	s.RegisterRoutes()
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}
