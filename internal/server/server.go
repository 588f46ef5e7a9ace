package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
	"taskboard/internal/repository/memory"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config

	redis   *redis.Client
	relay   *realtime.RedisBroadcaster
	gateway *realtime.Gateway
	log     logrus.FieldLogger
}

func Init(cfg *config.Config, log logrus.FieldLogger) (*Server, error) {
	s := &Server{Config: cfg, log: log}

	repo, err := s.openStore()
	if err != nil {
		return nil, err
	}

	registry := realtime.NewRegistry()
	local := realtime.NewBroadcaster(registry, log.WithField("component", "broadcaster"))
	var publisher realtime.Publisher = local
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, goerr.Wrap(err, "❌ invalid REDIS_URL")
		}
		s.redis = redis.NewClient(opts)
		s.relay = realtime.NewRedisBroadcaster(s.redis, cfg.RedisChannel, local, log.WithField("component", "relay"))
		publisher = s.relay
		log.WithField("channel", cfg.RedisChannel).Info("✅ Board events relayed through Redis")
	}

	gin.SetMode(gin.ReleaseMode)
	deps := Deps{
		Repo:       repo,
		Tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry),
		Registry:   registry,
		Publisher:  publisher,
		SendBuffer: cfg.RealtimeSendBuffer,
		Logger:     log,
	}
	s.gateway = NewGateway(deps)
	deps.Gateway = s.gateway
	s.Engine = NewRouter(deps)
	return s, nil
}

func (s *Server) openStore() (repository.Store, error) {
	if s.Config.Storage == config.StorageMemory {
		s.log.Warn("⚠️  Using in-memory storage, data is lost on restart")
		return memory.New(), nil
	}

	db, err := gorm.Open(postgres.Open(s.Config.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "❌ failed to connect to DB")
	}
	s.DB = db
	s.log.Info("✅ Connected to database")
	return repository.NewGormStore(db), nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.relay != nil {
		go s.relay.Run(ctx)
	}

	serveErr := make(chan error, 1)
	go func() {
		s.log.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return goerr.Wrap(err, "❌ failed to listen")
		}
	case <-ctx.Done():
	}
	s.log.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return goerr.Wrap(err, "❌ server forced to shutdown")
	}
	// Hijacked websocket connections are invisible to srv.Shutdown.
	if err := s.gateway.Shutdown(shutdownCtx); err != nil {
		s.log.WithError(err).WithField("open", s.gateway.Open()).Warn("⚠️  Websocket sessions did not close in time")
	}
	s.close()

	s.log.Info("✅ Server exited properly")
	return nil
}

func (s *Server) close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close redis client")
		}
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
