// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"chat-intake/internal/common/aws"
	"chat-intake/internal/common/config"
	"chat-intake/internal/common/database"
	"chat-intake/internal/common/logger"
	"chat-intake/internal/common/observability"

	nr "chat-intake/internal/workers/communication/notification-relay"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// openAndPing opens a client and pings it. A client that fails the ping is
// closed before the error is returned.
func openAndPing[C pingCloser](ctx context.Context, open func() (C, error)) (C, error) {
	var zero C
	c, err := open()
	if err != nil {
		return zero, err
	}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return zero, err
	}
	return c, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notification relay...")

	obs := observability.New("notification-relay")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayCfg := nr.LoadConfig(cfg)
	if err := relayCfg.Validate(); err != nil {
		zapLog.Fatal("invalid relay configuration", zap.Error(err))
	}
	if !cfg.Database.Redis.Enabled() {
		zapLog.Fatal("relay requires database.redis.address")
	}

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(ctx, func() error {
		var err error
		pg, err = openAndPing(ctx, func() (*database.PostgresClient, error) {
			return database.NewPostgres(cfg.Database.Postgres)
		})
		return err
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(ctx, func() error {
		var err error
		rdb, err = openAndPing(ctx, func() (*database.RedisClient, error) {
			return database.NewRedis(cfg.Database.Redis)
		})
		return err
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Delivery channels ---
	deps := nr.ServiceDependencies{
		Source:        database.NewNotificationQueue(rdb.Client, cfg.Database.Redis.NotificationQueue),
		Marker:        pg.Records(),
		Observability: obs,
		Logger:        log,
	}
	if relayCfg.EmailEnabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.Email.FromEmail)
		if err != nil {
			zapLog.Fatal("failed to create SES client", zap.Error(err))
		}
		deps.Email = sesClient
	}
	if relayCfg.SMSEnabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}
		deps.SMS = snsClient
	}

	service := nr.NewService(deps, relayCfg)

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ready", http.StatusOK
		if err := rdb.Ping(r.Context()); err != nil {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	healthSrv := &http.Server{Addr: cfg.Notifications.RelayAddress, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", healthSrv.Addr))
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Relay loop ---
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := service.Run(ctx); err != nil {
			zapLog.Error("relay stopped with error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping relay...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	wg.Wait()

	zapLog.Info("Notification relay stopped gracefully")
}
