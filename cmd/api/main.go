package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/vantutran2k1/tollfleet/internal/adapter/handler"
	"github.com/vantutran2k1/tollfleet/internal/adapter/location"
	"github.com/vantutran2k1/tollfleet/internal/adapter/logger"
	"github.com/vantutran2k1/tollfleet/internal/adapter/storage/memory"
	"github.com/vantutran2k1/tollfleet/internal/adapter/storage/postgres"
	redisadapter "github.com/vantutran2k1/tollfleet/internal/adapter/storage/redis"
	"github.com/vantutran2k1/tollfleet/internal/adapter/websocket"
	"github.com/vantutran2k1/tollfleet/internal/config"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"github.com/vantutran2k1/tollfleet/internal/core/port"
	"github.com/vantutran2k1/tollfleet/internal/core/service"
	"github.com/vantutran2k1/tollfleet/internal/core/service/tollrate"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, _ := logger.New(cfg.Env)
	defer appLogger.Sync()

	var audit port.AuditStore
	if cfg.DBUrl != "" {
		dbConfig, err := pgxpool.ParseConfig(cfg.DBUrl)
		if err != nil {
			appLogger.Fatal("unable to parse db config", zap.Error(err))
		}

		pool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
		if err != nil {
			appLogger.Fatal("unable to create db pool", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			appLogger.Fatal("cannot connect to db", zap.Error(err))
		}

		pgAudit := postgres.NewAuditStore(pool)
		if err := pgAudit.EnsureSchema(context.Background()); err != nil {
			appLogger.Fatal("cannot prepare audit schema", zap.Error(err))
		}
		audit = pgAudit
		appLogger.Info("audit records persisted to postgres")
	} else {
		audit = memory.NewAuditStore()
	}

	hub := websocket.NewHub(appLogger)
	go hub.Run()

	engineOpts := []service.EngineOption{service.WithBroadcaster(hub)}
	var nearby port.NearbyFinder
	if cfg.RedisURL != "" {
		redisOpts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			appLogger.Fatal("unable to parse redis url", zap.Error(err))
		}
		telemetry := redisadapter.NewTelemetryStore(goredis.NewClient(redisOpts))
		engineOpts = append(engineOpts, service.WithTelemetry(telemetry))
		nearby = telemetry
		appLogger.Info("vehicle telemetry published to redis")
	}

	var provider port.LocationProvider
	if cfg.Directed() {
		provider = location.NewDirected(cfg.Mode())
	} else {
		provider = location.NewRandom(cfg.Seed, cfg.RegionSizeKm, cfg.RegionSizeKm)
	}

	toll, err := tollrate.NewStandard(cfg.Rate())
	if err != nil {
		appLogger.Fatal("invalid toll rate", zap.Error(err))
	}

	settle := service.NewSettlementService(appLogger)
	engine, err := service.NewEngine(service.EngineConfig{
		Mode:      cfg.Mode(),
		StepKm:    cfg.StepKm,
		EpsilonKm: cfg.EpsilonKm,
		Stop:      service.FirstOf(service.AfterRounds(cfg.SimRounds), service.AllArrived()),
		Pacing:    cfg.TickPacing,
	}, provider, toll, settle, audit, appLogger, engineOpts...)
	if err != nil {
		appLogger.Fatal("cannot build engine", zap.Error(err))
	}

	if err := buildFleet(cfg, engine); err != nil {
		appLogger.Fatal("cannot build fleet", zap.Error(err))
	}

	authSvc := service.NewAuthService(cfg.JWTSecret, 24*time.Hour)
	passwordHash, err := authSvc.HashPassword(cfg.OperatorPassword)
	if err != nil {
		appLogger.Fatal("cannot hash operator password", zap.Error(err))
	}

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()

	go func() {
		if err := engine.Run(runCtx); err != nil {
			appLogger.Warn("simulation ended early", zap.Error(err))
		}
		hub.BroadcastStopped(engine.Round())
		logReport(appLogger, engine.Report())
	}()

	authHandler := handler.NewAuthHandler(authSvc, cfg.OperatorName, passwordHash)
	reportHandler := handler.NewReportHandler(engine, audit)
	simHandler := handler.NewSimulationHandler(engine, stopRun)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "UP", "env": cfg.Env})
	})
	r.GET("/ws/feed", func(ctx *gin.Context) {
		websocket.ServeWS(hub, ctx.Writer, ctx.Request)
	})

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.GET("/report", reportHandler.GetReport)
		api.GET("/vehicles", reportHandler.ListVehicles)
		api.GET("/vehicles/:id", reportHandler.GetVehicle)
		api.GET("/audit", reportHandler.ListAudit)
		api.GET("/simulation/status", simHandler.Status)
		if nearby != nil {
			api.GET("/telemetry/nearby", handler.NewTelemetryHandler(nearby).Nearby)
		}

		protected := api.Group("/simulation")
		protected.Use(handler.AuthMiddleware(authSvc))
		protected.POST("/stop", simHandler.Stop)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		appLogger.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("listen: %s\n", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server...")
	stopRun()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("server forced to shutdown:", zap.Error(err))
	}

	appLogger.Info("server exiting")
}

func buildFleet(cfg config.Config, engine *service.Engine) error {
	var shared *domain.Ledger
	if cfg.SharedLedger {
		ledger, err := domain.NewLedger(cfg.Balance())
		if err != nil {
			return err
		}
		shared = ledger
	}

	var dest *domain.Position
	if cfg.Directed() {
		dest = &domain.Position{X: cfg.DestX, Y: cfg.DestY}
	}

	for _, owner := range cfg.OwnerNames() {
		ledger := shared
		if ledger == nil {
			l, err := domain.NewLedger(cfg.Balance())
			if err != nil {
				return err
			}
			ledger = l
		}
		engine.Register(domain.NewVehicle(owner, domain.Position{}, dest, ledger))
	}
	return nil
}

func logReport(l *zap.Logger, rep service.Report) {
	for _, v := range rep.Vehicles {
		l.Info("vehicle summary",
			zap.String("vehicle_id", v.ID.String()),
			zap.String("owner", v.Owner),
			zap.String("status", string(v.Status)),
			zap.Float64("total_distance_km", v.TotalDistance),
			zap.String("total_toll", v.TotalToll.StringFixed(2)),
			zap.String("final_balance", v.FinalBalance.StringFixed(2)),
			zap.Int("path_points", len(v.Path)),
		)
	}
}
