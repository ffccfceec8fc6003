package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MicahParks/keyfunc"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskflow/api"
	"taskflow/board"
	"taskflow/config"
	"taskflow/domain"
	"taskflow/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.StandardLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rc *redis.Client
	if cfg.Redis.ConnectionString != "" {
		rc = redis.NewClient(storage.ParseRedisOptions(cfg.Redis.ConnectionString))
		if err := rc.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rc.Close()
	}

	kv, err := openKV(cfg, rc)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	broker := api.NewBroker()
	sinks := []board.Publisher{broker}
	origin := uuid.NewString()
	if rc != nil {
		sinks = append(sinks, board.NewRedisPublisher(rc, cfg.Events.Channel, origin))
	}
	if cfg.Events.Queue != "" {
		queue, err := board.NewQueueSink(cfg.Store.ConnectionString, cfg.Events.Queue)
		if err != nil {
			log.Fatalf("events queue: %v", err)
		}
		sinks = append(sinks, queue)
	}

	registry := board.NewRegistry(kv, board.Config{
		Seed:         cfg.Workspace.Seed,
		PersistEmpty: cfg.Workspace.PersistEmpty,
		Sinks:        sinks,
		Logger:       logger,
	})

	if rc != nil {
		go board.SubscribeEvents(ctx, logger, rc, cfg.Events.Channel, origin, func(ev domain.Event) {
			log.WithFields(log.Fields{"user": ev.UserID, "event": ev.Type}).Debug("remote change, reloading workspace")
			registry.Invalidate(ev.UserID)
			broker.Notify(ev.UserID)
		})
	}

	auth, err := newAuthenticator(cfg.Auth)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentEncoding},
	}))
	e.Use(api.GzipRequestMiddleware())
	api.Register(e, registry, auth, broker, logger)

	go func() {
		<-ctx.Done()
		if err := e.Shutdown(context.Background()); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithFields(log.Fields{"port": cfg.Port, "backend": cfg.Store.Backend}).Info("taskflow api starting")
	if err := e.Start(":" + cfg.Port); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

func openKV(cfg config.Config, rc *redis.Client) (storage.KV, error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		return storage.NewFile(cfg.Store.Dir)
	case config.BackendRedis:
		return storage.NewRedis(rc, cfg.Redis.KeyPrefix), nil
	case config.BackendTables:
		tables, err := storage.NewTables(cfg.Store.ConnectionString, cfg.Store.Table)
		if err != nil {
			return nil, err
		}
		if rc == nil {
			return tables, nil
		}
		return storage.NewCache(tables, rc, cfg.Store.CacheTTL), nil
	default:
		return storage.NewMemory(), nil
	}
}

func newAuthenticator(cfg config.AuthConfig) (api.Authenticator, error) {
	switch cfg.LocalMode {
	case "none":
		log.Warn("LOCAL_AUTH_MODE=none, all requests share one workspace")
		return api.Anonymous{}, nil
	case "hs256":
		return api.NewSharedSecretAuth([]byte(cfg.LocalSecret), cfg.Audience, ""), nil
	}
	jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.Domain)
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
	if err != nil {
		return nil, fmt.Errorf("jwks: %w", err)
	}
	return api.NewAuth(jwks, cfg.Audience, "https://"+cfg.Domain+"/", cfg.JWKSCacheTTL), nil
}
