package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"artisanal-futures/internal/config"
	catalogHandler "artisanal-futures/internal/handlers/catalog"
	categoryHandler "artisanal-futures/internal/handlers/category"
	dispatchHandler "artisanal-futures/internal/handlers/dispatch"
	pathwaysHandler "artisanal-futures/internal/handlers/pathways"
	shopHandler "artisanal-futures/internal/handlers/shop"
	wsHandler "artisanal-futures/internal/handlers/websocket"
	"artisanal-futures/internal/metrics"
	"artisanal-futures/internal/middleware"
	"artisanal-futures/internal/pkg/jwt"
	"artisanal-futures/internal/pkg/ratelimit"
	"artisanal-futures/internal/repository/postgres"
	catalogUsecase "artisanal-futures/internal/service/catalog"
	categoryUsecase "artisanal-futures/internal/service/category"
	dispatchUsecase "artisanal-futures/internal/service/dispatch"
	"artisanal-futures/internal/service/passcode"
	shopUsecase "artisanal-futures/internal/service/shop"
	"artisanal-futures/internal/websocket"
	wsHandlers "artisanal-futures/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	infra      *Infra
	httpServer *http.Server
	stopHub    context.CancelFunc
	hub        *websocket.Hub
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}
}

// Start connects the infrastructure, wires the services and serves HTTP
// until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	logger := s.logger

	// ----- Infrastructure -----
	infra, err := Connect(ctx, s.cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect infrastructure: %w", err)
	}
	s.infra = infra

	// ----- JWT -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Metrics -----
	m := metrics.New(s.cfg.MetricsPrefix)

	// ----- Repositories -----
	categoryRepo := postgres.NewCategoryRepository(infra.Pool)
	catalogRepo := postgres.NewCatalogRepository(infra.Pool)
	shopRepo := postgres.NewShopRepository(infra.Pool)

	// ----- Services (Usecases) -----
	deriver, err := NewDeriver(s.cfg)
	if err != nil {
		return err
	}
	logisticsService := NewLogisticsService(s.cfg, infra, deriver, logger)
	driverVerifier := passcode.NewVerifier(deriver, logisticsService, logger)

	categoryService := categoryUsecase.NewCategoryService(categoryRepo, logger)
	catalogService := catalogUsecase.NewCatalogService(catalogRepo, categoryRepo, m, logger)
	shopService := shopUsecase.NewShopService(shopRepo, logger)

	// ----- WebSocket Hub -----
	channelAuth := websocket.NewChannelAuth(s.cfg.ChannelAuthKey, s.cfg.ChannelAuthSecret)
	if s.cfg.ChannelAuthSecret == "" {
		logger.Warn("CHANNEL_AUTH_SECRET not set, depot channels cannot be joined")
	}
	hub := websocket.NewHub(channelAuth, m, logger)

	messageLog, err := s.messageLog(infra)
	if err != nil {
		return err
	}
	dispatchService := dispatchUsecase.NewDispatchService(
		messageLog,
		hub,
		logisticsService,
		s.cfg.DispatchScope != "global",
		m,
		logger,
	)
	hub.RegisterHandler(wsHandlers.NewDispatchHistoryHandler(dispatchService))

	hubCtx, stopHub := context.WithCancel(context.Background())
	s.stopHub = stopHub
	s.hub = hub
	go hub.Run(hubCtx)

	// ----- Handlers -----
	var limiter middleware.Limiter
	if infra.Redis != nil {
		limiter = ratelimit.NewRateLimiter(infra.Redis, "af:ratelimit")
	}

	handlers := &Handlers{
		CategoryHandler: categoryHandler.NewCategoryHandler(categoryService),
		CatalogHandler:  catalogHandler.NewCatalogHandler(catalogService),
		ShopHandler:     shopHandler.NewShopHandler(shopService),
		PathwaysHandler: pathwaysHandler.NewPathwaysHandler(logisticsService),
		DispatchHandler: dispatchHandler.NewDispatchHandler(dispatchService, channelAuth, logisticsService, driverVerifier, logger),
		WSHandler:       wsHandler.NewWebSocketHandler(hub, s.cfg.CORSOrigins, logger),
		AuthMiddleware:  middleware.NewAuthMiddleware(jwtManager.Verifier),
		DriverAccess: middleware.DriverAccess(driverVerifier, middleware.DriverAccessConfig{
			SandboxPath:  s.cfg.SandboxPath,
			CookieTTL:    s.cfg.DriverCookieTTL,
			SecureCookie: !s.cfg.IsDevelopment(),
		}, m),
		DispatchLimit: middleware.RateLimit(limiter, s.cfg.DispatchRateLimit, s.cfg.DispatchRateWindow, logger),
		Metrics:       m,
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(logger),
		middleware.RecoveryMiddleware(logger),
		middleware.MetricsMiddleware(m),
		middleware.CORSMiddleware(s.cfg.CORSOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server running",
		zap.String("addr", s.cfg.HTTPAddr),
		zap.String("dispatch_scope", s.cfg.DispatchScope),
		zap.String("dispatch_store", s.cfg.DispatchStore),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then closes the hub and connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	if s.stopHub != nil {
		s.stopHub()
		select {
		case <-s.hub.Done():
		case <-ctx.Done():
		}
	}

	if s.infra != nil {
		s.infra.Close()
	}
	return err
}

func (s *Server) messageLog(infra *Infra) (dispatchUsecase.MessageLog, error) {
	switch s.cfg.DispatchStore {
	case "redis":
		if infra.Redis == nil {
			return nil, fmt.Errorf("DISPATCH_STORE=redis requires REDIS_ADDR")
		}
		return dispatchUsecase.NewRedisLog(infra.Redis, "af:dispatch", s.cfg.DispatchLogCap), nil
	case "memory", "":
		return dispatchUsecase.NewMemoryLog(s.cfg.DispatchLogCap), nil
	default:
		return nil, fmt.Errorf("unknown DISPATCH_STORE %q", s.cfg.DispatchStore)
	}
}
