package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/Nixie-Tech-LLC/powerhour/internal/catalog"
	"github.com/Nixie-Tech-LLC/powerhour/internal/clip"
	"github.com/Nixie-Tech-LLC/powerhour/internal/config"
	"github.com/Nixie-Tech-LLC/powerhour/internal/eligibility"
	"github.com/Nixie-Tech-LLC/powerhour/internal/logger"
	"github.com/Nixie-Tech-LLC/powerhour/internal/mqtt"
	"github.com/Nixie-Tech-LLC/powerhour/internal/random"
	"github.com/Nixie-Tech-LLC/powerhour/internal/redis"
	"github.com/Nixie-Tech-LLC/powerhour/internal/session"
	"github.com/Nixie-Tech-LLC/powerhour/internal/validator"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
		File:        cfg.LogFile,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to init logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := random.New()

	// YouTube Data API
	opts := []option.ClientOption{option.WithAPIKey(cfg.YouTubeAPIKey)}
	if cfg.YouTubeEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.YouTubeEndpoint))
	}
	client, err := catalog.NewClient(ctx, src, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("youtube client init")
	}
	var cat catalog.Catalog = client

	// optional redis cache in front of the catalog
	if cfg.RedisAddress != "" {
		if err := redis.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without catalog cache")
		} else {
			cat = catalog.NewCache(client, redis.Rdb, cfg.CacheTTL, src)
			defer redis.Rdb.Close()
		}
	}

	v := validator.New(cat, eligibility.New(cfg.TargetRegion), clip.NewSelector(src), cfg.MaxCandidates)

	sessionOpts := session.Options{CueWindow: cfg.DrinkCue, TTL: cfg.SessionTTL}

	// optional MQTT player bus
	var bus *mqtt.Bus
	if cfg.MQTTBrokerURL != "" {
		mc, err := mqtt.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			log.Warn().Err(err).Msg("mqtt unavailable, running without player bus")
		} else {
			bus = mqtt.NewBus(mc)
			sessionOpts.Sinks = bus.Sinks
			sessionOpts.OnCreate = bus.Watch
		}
	}

	sessions := session.NewManager(v, sessionOpts)
	if bus != nil {
		if err := bus.Listen(sessions); err != nil {
			log.Error().Err(err).Msg("mqtt listen failed")
		}
		defer bus.Close()
	}
	go sessions.RunJanitor(ctx, janitorInterval)

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	RegisterRoutes(r, cfg, sessions)

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}
}
