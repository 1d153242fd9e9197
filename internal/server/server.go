package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bdecent/avatarhub/internal/activity"
	activitydomain "github.com/bdecent/avatarhub/internal/activity/domain"
	"github.com/bdecent/avatarhub/internal/assignment"
	"github.com/bdecent/avatarhub/internal/availability"
	availabilitydomain "github.com/bdecent/avatarhub/internal/availability/domain"
	"github.com/bdecent/avatarhub/internal/avatar"
	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bdecent/avatarhub/internal/collection"
	collectiondomain "github.com/bdecent/avatarhub/internal/collection/domain"
	"github.com/bdecent/avatarhub/internal/config"
	"github.com/bdecent/avatarhub/internal/events"
	eventsdomain "github.com/bdecent/avatarhub/internal/events/domain"
	obsmetrics "github.com/bdecent/avatarhub/internal/observability/metrics"
	"github.com/bdecent/avatarhub/internal/profilesync"
	"github.com/bdecent/avatarhub/internal/roster"
	"github.com/bdecent/avatarhub/internal/usage"
	usagedomain "github.com/bdecent/avatarhub/internal/usage/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	roster.Module,
	profilesync.Module,
	avatar.Module,
	activity.Module,
	availability.Module,
	collection.Module,
	events.Module,
	usage.Module,
	assignment.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	avatarSvc     avatardomain.Service
	activitySvc   activitydomain.Service
	collectionSvc collectiondomain.Service
	usageSvc      usagedomain.Service
	eventsSvc     eventsdomain.Service
	policy        availabilitydomain.Policy
	scheduler     *assignment.Scheduler
	metrics       *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	AvatarSvc     avatardomain.Service
	ActivitySvc   activitydomain.Service
	CollectionSvc collectiondomain.Service
	UsageSvc      usagedomain.Service
	EventsSvc     eventsdomain.Service
	Policy        availabilitydomain.Policy
	Scheduler     *assignment.Scheduler
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		avatarSvc:     p.AvatarSvc,
		activitySvc:   p.ActivitySvc,
		collectionSvc: p.CollectionSvc,
		usageSvc:      p.UsageSvc,
		eventsSvc:     p.EventsSvc,
		policy:        p.Policy,
		scheduler:     p.Scheduler,
		metrics:       p.Metrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Avatars --------
	api.GET("/avatars", s.ListAvatars)
	api.GET("/avatars/:id", s.GetAvatar)
	api.GET("/avatars/:id/progress", s.ActorRequired(), s.GetAvatarProgress)
	api.POST("/avatars/:id/collect", s.ActorRequired(), s.CollectAvatar)
	api.POST("/avatars/:id/upgrade", s.ActorRequired(), s.UpgradeAvatar)

	// -------- Collections --------
	api.GET("/collections", s.ActorRequired(), s.ListMyCollections)
	api.POST("/collections/primary", s.ActorRequired(), s.SetPrimaryCollection)

	// -------- Activities --------
	api.GET("/activities", s.ListActivities)
	api.GET("/activities/:id", s.GetActivity)
	api.GET("/activities/:id/avatars", s.ActorRequired(), s.ActivityAvatars)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/avatars", s.CreateAvatar)
	admin.PATCH("/avatars/:id", s.UpdateAvatar)
	admin.POST("/avatars/:id/toggle-status", s.ToggleAvatarStatus)
	admin.POST("/avatars/:id/archive", s.ArchiveAvatar)
	admin.POST("/avatars/:id/restore", s.RestoreAvatar)
	admin.DELETE("/avatars/:id", s.DeleteAvatar)
	admin.GET("/avatars/:id/usage", s.GetAvatarUsage)

	admin.POST("/activities", s.CreateActivity)
	admin.PATCH("/activities/:id", s.UpdateActivity)

	admin.GET("/events", s.ListEvents)

	admin.POST("/assignment/run", s.RunAssignment)
	admin.POST("/assignment/reinitialize", s.ReinitializeAssignment)
}
