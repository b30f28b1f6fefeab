package main

import (
	"context"
	"fmt"
	"time"

	"chat-intake/internal/api"
	"chat-intake/internal/common/config"
	"chat-intake/internal/common/database"
	"chat-intake/internal/common/genai"
	"chat-intake/internal/common/logger"
	"chat-intake/internal/common/observability"
	dispatchrecords "chat-intake/internal/workers/capture/dispatch-records"
	extracttags "chat-intake/internal/workers/capture/extract-tags"
	normalizeschedule "chat-intake/internal/workers/capture/normalize-schedule"
	processturn "chat-intake/internal/workers/conversation/process-turn"

	"go.uber.org/zap"
)

// pipeline holds everything a turn needs plus the handles to close.
type pipeline struct {
	cfg       *config.Config
	zapLog    *zap.Logger
	log       logger.Logger
	obs       *observability.Observability
	postgres  *database.PostgresClient
	redis     *database.RedisClient
	processor *processturn.Handler
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func buildPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	p := &pipeline{
		cfg:    cfg,
		zapLog: zapLog,
		log:    log,
		obs:    observability.New(cfg.App.Name),
	}

	p.postgres, err = database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		p.Close()
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.postgres.Ping(pingCtx); err != nil {
		// Turns do not depend on the store, /ready reports it.
		log.Warn("postgres not reachable at startup", map[string]interface{}{"error": err.Error()})
	}

	var publisher dispatchrecords.EventPublisher
	if cfg.Database.Redis.Enabled() {
		p.redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			p.Close()
			return nil, err
		}
		publisher = database.NewNotificationQueue(p.redis.Client, cfg.Database.Redis.NotificationQueue)
	} else {
		log.Info("redis not configured, notification events disabled", nil)
	}

	turnCfg, err := processturn.LoadConfig(cfg)
	if err != nil {
		p.Close()
		return nil, err
	}

	normCfg := normalizeschedule.LoadConfig()
	normCfg.FallbackDays = cfg.Chat.FallbackDays

	dispatcher := dispatchrecords.NewHandler(
		dispatchrecords.LoadConfig(cfg),
		p.postgres.Records(),
		publisher,
		normalizeschedule.NewHandler(normCfg, log),
		log,
	)

	p.processor = processturn.NewHandler(
		turnCfg,
		genai.NewClient(cfg.GenAI),
		extracttags.NewHandler(log),
		dispatcher,
		p.obs,
		log,
	)

	log.Info("pipeline ready", map[string]interface{}{
		"model":      cfg.GenAI.Model,
		"maxHistory": turnCfg.MaxHistory,
		"maxTokens":  cfg.GenAI.MaxTokens,
		"queue":      cfg.Database.Redis.Enabled(),
	})
	return p, nil
}

func (p *pipeline) readinessChecks() []api.ReadinessCheck {
	checks := []api.ReadinessCheck{{Name: "postgres", Ping: p.postgres.Ping}}
	if p.redis != nil {
		checks = append(checks, api.ReadinessCheck{Name: "redis", Ping: p.redis.Ping})
	}
	return checks
}

func (p *pipeline) Close() {
	if p.redis != nil {
		if err := p.redis.Close(); err != nil {
			p.log.Warn("redis close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if p.postgres != nil {
		if err := p.postgres.Close(); err != nil {
			p.log.Warn("postgres close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	p.obs.Shutdown()
	_ = p.zapLog.Sync()
}

func describe(cfg *config.Config) string {
	return fmt.Sprintf("%s %s (%s)", cfg.App.Name, cfg.App.Version, cfg.App.Environment)
}
